package cli

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/five82/tunesphere/internal/api"
)

func (e *env) printJSON(v any) error {
	enc := json.NewEncoder(e.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (e *env) table(header ...string) *tabwriter.Writer {
	w := tabwriter.NewWriter(e.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, strings.Join(header, "\t"))
	return w
}

func (e *env) printTracks(tracks []api.Track) error {
	if e.asJSON {
		return e.printJSON(nonNil(tracks))
	}
	if len(tracks) == 0 {
		fmt.Fprintln(e.out, "No tracks.")
		return nil
	}
	w := e.table("#", "ID", "TITLE", "ARTIST", "PLATFORM", "DURATION")
	for i, t := range tracks {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n", i+1, dash(t.Key()), dash(t.Title), dash(t.Artist), dash(string(t.Platform)), dash(string(t.Duration)))
	}
	return w.Flush()
}

func (e *env) printPlaylists(playlists []api.Playlist) error {
	if e.asJSON {
		return e.printJSON(nonNil(playlists))
	}
	if len(playlists) == 0 {
		fmt.Fprintln(e.out, "No playlists.")
		return nil
	}
	w := e.table("ID", "NAME", "SONGS", "FEATURED")
	for _, p := range playlists {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", dash(p.Key()), dash(p.Name), len(p.Songs), yesNo(p.IsFeatured))
	}
	return w.Flush()
}

func (e *env) printUsers(users []api.User) error {
	if e.asJSON {
		return e.printJSON(nonNil(users))
	}
	if len(users) == 0 {
		fmt.Fprintln(e.out, "No users.")
		return nil
	}
	w := e.table("ID", "NAME", "EMAIL", "ADMIN")
	for _, u := range users {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", dash(string(u.ID)), dash(u.Name), dash(u.Email), yesNo(u.IsAdmin))
	}
	return w.Flush()
}

// done prints a confirmation line unless JSON output was requested.
func (e *env) done(format string, args ...any) error {
	if e.asJSON {
		return e.printJSON(map[string]string{"message": fmt.Sprintf(format, args...)})
	}
	_, err := fmt.Fprintf(e.out, format+"\n", args...)
	return err
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}

func dash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// readSecret returns flagValue, or the first line of in when the flag is
// empty or "-".
func readSecret(in io.Reader, flagValue, name string) (string, error) {
	if flagValue != "" && flagValue != "-" {
		return flagValue, nil
	}
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read %s: %w", name, err)
	}
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return "", fmt.Errorf("%s is required (flag or stdin)", name)
	}
	return line, nil
}
