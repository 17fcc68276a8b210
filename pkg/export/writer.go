package export

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/borgmon/ics-importer/pkg/models"
	"github.com/borgmon/ics-importer/pkg/routing"
	"github.com/emersion/go-ical"
)

// Writer writes calendars into a directory. Filenames are unique per
// Writer; it is not safe for concurrent use.
type Writer struct {
	Dir string
	Now func() time.Time

	used map[string]bool
}

// NewWriter creates a writer for dir using the wall clock
func NewWriter(dir string) *Writer {
	return &Writer{Dir: dir, Now: time.Now}
}

// WriteInvitations writes one invitation per event, named after the event
// UID, and returns the paths in event order.
func (w *Writer) WriteInvitations(events []models.Event, invitee Invitee) ([]string, error) {
	if err := w.ensureDir(); err != nil {
		return nil, err
	}
	now := w.now()
	paths := make([]string, 0, len(events))
	for _, e := range events {
		path, err := w.write(w.reserve(sanitize(e.ID, "event")), Invitation(e, invitee, now))
		if err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// WriteSourceCalendar writes the re-export of one feed. Nothing is written
// for an empty event list and the returned path is empty.
func (w *Writer) WriteSourceCalendar(sourceURL string, events []models.Event) (string, error) {
	if len(events) == 0 {
		return "", nil
	}
	if err := w.ensureDir(); err != nil {
		return "", err
	}
	cal := SourceCalendar(models.SourceName(sourceURL), events, w.now())
	return w.write(w.reserve(SourceBaseName(sourceURL)), cal)
}

// WriteTeamCalendar writes <team>.ics. Nothing is written for an empty
// event list and the returned path is empty.
func (w *Writer) WriteTeamCalendar(team routing.Team, events []models.Event) (string, error) {
	if len(events) == 0 {
		return "", nil
	}
	if err := w.ensureDir(); err != nil {
		return "", err
	}
	return w.write(team.String()+".ics", TeamCalendar(team, events, w.now()))
}

// SourceBaseName is the file stem used for a feed's calendar: google,
// vereinsplaner, or the sanitized stem of the URL path.
func SourceBaseName(sourceURL string) string {
	u, err := url.Parse(sourceURL)
	if err != nil {
		return "calendar"
	}
	host := strings.ToLower(u.Hostname())
	switch {
	case strings.Contains(host, "google"):
		return "google"
	case strings.Contains(host, "vereinsplaner"):
		return "vereinsplaner"
	}
	base := u.Path[strings.LastIndex(u.Path, "/")+1:]
	if i := strings.LastIndex(base, "."); i > 0 {
		base = base[:i]
	}
	return sanitize(base, "calendar")
}

// sanitize keeps letters, digits, '-' and '_'.
func sanitize(s, fallback string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return fallback
	}
	return b.String()
}

// reserve returns base.ics, or base_N.ics for the smallest N >= 2 not yet
// handed out by this writer.
func (w *Writer) reserve(base string) string {
	if w.used == nil {
		w.used = make(map[string]bool)
	}
	name := base + ".ics"
	for n := 2; w.used[name]; n++ {
		name = fmt.Sprintf("%s_%d.ics", base, n)
	}
	w.used[name] = true
	return name
}

func (w *Writer) write(name string, cal *ical.Calendar) (string, error) {
	data, err := Encode(cal)
	if err != nil {
		return "", fmt.Errorf("encode %s: %w", name, err)
	}
	path := filepath.Join(w.Dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}

func (w *Writer) ensureDir() error {
	if err := os.MkdirAll(w.Dir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	return nil
}

func (w *Writer) now() time.Time {
	if w.Now == nil {
		return time.Now()
	}
	return w.Now()
}
