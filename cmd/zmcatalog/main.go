// Command zmcatalog browses the IF Archive's Z-code index and downloads a
// chosen story file to disk. It never touches story/interp: cataloguing
// stories is entirely outside the core's §6 public API.
//
// Grounded on selectstoryui.NewUIModel
// (_examples/DaveTCode-zmachine-golang/selectstoryui/ui.go) for the
// goquery scrape plus bubbles list/spinner picker, and
// cmd/scraper/main.go's index-parsing regexes; the sha256-keyed on-disk
// cache is the same idea, reshaped to cache the parsed listing instead of
// the zmachine-specific model.
package main

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const indexURL = "https://www.ifarchive.org/indexes/if-archive/games/zcode/"
const cacheDuration = 7 * 24 * time.Hour

var docStyle = lipgloss.NewStyle().Margin(1, 2)

var (
	cacheDir string
	destDir  string
)

func init() {
	flag.StringVar(&cacheDir, "cache", ".zmcatalog-cache", "directory for the cached index and downloaded stories")
	flag.StringVar(&destDir, "dest", "stories", "directory to save the chosen story into")
	flag.Parse()
}

type catalogEntry struct {
	Name        string    `json:"name"`
	ReleaseDate time.Time `json:"release_date"`
	URL         string    `json:"url"`
	Description string    `json:"description"`
}

func (c catalogEntry) Title() string       { return c.Name }
func (c catalogEntry) Description() string { return c.Description }
func (c catalogEntry) FilterValue() string { return c.Name + c.Description }

type catalogState int

const (
	loadingIndex catalogState = iota
	choosingEntry
	downloading
	done
)

type catalogModel struct {
	state      catalogState
	entryList  list.Model
	spinner    spinner.Model
	err        error
	savedPath  string
}

type indexLoadedMsg []list.Item
type downloadedMsg struct {
	name string
	data []byte
}
type errMsg struct{ error }

func (e errMsg) Error() string { return e.error.Error() }

func newCatalogModel() catalogModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	l := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	l.SetShowTitle(false)
	return catalogModel{state: loadingIndex, entryList: l, spinner: s}
}

func (m catalogModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, loadIndex())
}

func (m catalogModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "enter":
			if m.state != choosingEntry {
				break
			}
			entry, ok := m.entryList.SelectedItem().(catalogEntry)
			if ok {
				m.state = downloading
				return m, downloadEntry(entry, cacheDir)
			}
		}

	case tea.WindowSizeMsg:
		h, v := docStyle.GetFrameSize()
		m.entryList.SetSize(msg.Width-h, msg.Height-v)

	case indexLoadedMsg:
		m.state = choosingEntry
		m.entryList.SetShowStatusBar(false)
		return m, m.entryList.SetItems([]list.Item(msg))

	case downloadedMsg:
		if err := os.MkdirAll(destDir, 0755); err != nil {
			m.err = err
			return m, nil
		}
		path := filepath.Join(destDir, msg.name)
		if err := os.WriteFile(path, msg.data, 0644); err != nil {
			m.err = err
			return m, nil
		}
		m.savedPath = path
		m.state = done
		return m, tea.Quit

	case errMsg:
		m.err = msg
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.entryList, cmd = m.entryList.Update(msg)
	return m, cmd
}

func (m catalogModel) View() string {
	if m.err != nil {
		return docStyle.Render(m.err.Error())
	}
	switch m.state {
	case loadingIndex:
		return fmt.Sprintf("\n\n   %s Loading the IF Archive index...\n\n", m.spinner.View())
	case choosingEntry:
		return docStyle.Render(m.entryList.View())
	case downloading:
		return fmt.Sprintf("\n\n   %s Downloading...\n\n", m.spinner.View())
	case done:
		return fmt.Sprintf("\nSaved to %s\n", m.savedPath)
	default:
		return ""
	}
}

func cacheFilePath(key string) string {
	hash := sha256.Sum256([]byte(key))
	return filepath.Join(cacheDir, hex.EncodeToString(hash[:]))
}

func cacheValid(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return time.Since(info.ModTime()) < cacheDuration
}

func loadIndex() tea.Cmd {
	return func() tea.Msg {
		cachePath := cacheFilePath("index")
		if cacheValid(cachePath) {
			if data, err := os.ReadFile(cachePath); err == nil {
				var cached []catalogEntry
				if json.Unmarshal(data, &cached) == nil {
					return indexLoadedMsg(toItems(cached))
				}
			}
		}

		c := &http.Client{Timeout: 30 * time.Second}
		res, err := c.Get(indexURL)
		if err != nil {
			return errMsg{err}
		}
		defer res.Body.Close() // nolint:errcheck
		if res.StatusCode != 200 {
			return errMsg{fmt.Errorf("fetching index: status %d", res.StatusCode)}
		}

		doc, err := goquery.NewDocumentFromReader(res.Body)
		if err != nil {
			return errMsg{err}
		}

		zcodeSuffix := regexp.MustCompile(`\.z[12345678]$`)
		dateField := regexp.MustCompile(`\d{2}-\w{3}-\d{4}`)

		var entries []catalogEntry
		doc.Find("dl dt").Each(func(_ int, s *goquery.Selection) {
			href, _ := s.Find("a").Attr("href")
			if !zcodeSuffix.MatchString(href) {
				return
			}
			title := strings.Replace(s.Find("a").Text(), "◆", "", 1)
			rawDate := s.Find("span").Text()
			releaseDate, _ := time.Parse("02-Jan-2006", dateField.FindString(rawDate))

			var description string
			s.NextUntil("dt").Each(func(_ int, s2 *goquery.Selection) {
				if len(s2.ChildrenFiltered("p").Nodes) == 1 {
					description = s2.Find("p").Text()
				}
			})

			entries = append(entries, catalogEntry{
				Name:        title,
				ReleaseDate: releaseDate,
				URL:         "https://www.ifarchive.org" + href,
				Description: description,
			})
		})

		if err := os.MkdirAll(cacheDir, 0755); err == nil {
			if data, err := json.Marshal(entries); err == nil {
				os.WriteFile(cachePath, data, 0644) // nolint:errcheck
			}
		}

		return indexLoadedMsg(toItems(entries))
	}
}

func toItems(entries []catalogEntry) []list.Item {
	items := make([]list.Item, len(entries))
	for i, e := range entries {
		items[i] = e
	}
	return items
}

func downloadEntry(e catalogEntry, cacheDir string) tea.Cmd {
	return func() tea.Msg {
		cachePath := cacheFilePath(e.URL)
		if cacheValid(cachePath) {
			if data, err := os.ReadFile(cachePath); err == nil {
				return downloadedMsg{name: filepath.Base(e.URL), data: data}
			}
		}

		c := &http.Client{Timeout: 60 * time.Second}
		res, err := c.Get(e.URL)
		if err != nil {
			return errMsg{err}
		}
		defer res.Body.Close() // nolint:errcheck

		data, err := io.ReadAll(res.Body)
		if err != nil {
			return errMsg{err}
		}

		if err := os.MkdirAll(cacheDir, 0755); err == nil {
			os.WriteFile(cachePath, data, 0644) // nolint:errcheck
		}

		return downloadedMsg{name: filepath.Base(e.URL), data: data}
	}
}

func main() {
	if _, err := tea.NewProgram(newCatalogModel()).Run(); err != nil {
		fmt.Fprintln(os.Stderr, "running catalog:", err)
		os.Exit(1)
	}
}
