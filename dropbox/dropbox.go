package dropbox

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Client is a minimal Dropbox Business API client. Requests are issued
// against the team space with the 'select user' header so that paths resolve
// in the configured team member's home namespace.
type Client struct {
	APIURL     string
	ContentURL string
	HTTP       *http.Client

	token    string
	memberID string
}

// Entry is a single item from a folder listing.
type Entry struct {
	Tag            string `json:".tag"`
	Name           string `json:"name"`
	PathDisplay    string `json:"path_display"`
	ServerModified string `json:"server_modified"`
}

// APIError is a non-2xx response from the Dropbox API.
type APIError struct {
	Status  int
	Summary string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("dropbox API error %d (%s)", e.Status, e.Summary)
}

// NotFound reports whether the error is a missing path rather than a
// transfer problem.
func (e *APIError) NotFound() bool {
	return strings.Contains(e.Summary, "not_found")
}

func NewClient(accessToken, teamMemberID string) *Client {
	return &Client{
		APIURL:     "https://api.dropboxapi.com",
		ContentURL: "https://content.dropboxapi.com",
		HTTP:       http.DefaultClient,

		token:    accessToken,
		memberID: teamMemberID,
	}
}

// ListFolder retrieves the complete set of entries for a folder, following
// the cursor when the listing spans more than one page.
func (c *Client) ListFolder(ctx context.Context, path string) ([]Entry, error) {
	entries := []Entry{}
	endpoint := c.APIURL + "/2/files/list_folder"
	body := map[string]any{"path": path}

	for {
		reply := struct {
			Entries []Entry `json:"entries"`
			Cursor  string  `json:"cursor"`
			HasMore bool    `json:"has_more"`
		}{}

		if err := c.rpc(ctx, endpoint, body, &reply); err != nil {
			return nil, err
		}

		entries = append(entries, reply.Entries...)

		if !reply.HasMore {
			break
		}

		endpoint = c.APIURL + "/2/files/list_folder/continue"
		body = map[string]any{"cursor": reply.Cursor}
	}

	return entries, nil
}

// CreateFolder creates a remote folder. An existing folder is not an error.
func (c *Client) CreateFolder(ctx context.Context, path string) error {
	body := map[string]any{"path": path, "autorename": false}

	if err := c.rpc(ctx, c.APIURL+"/2/files/create_folder_v2", body, nil); err != nil {
		var apierr *APIError
		if errors.As(err, &apierr) && strings.Contains(apierr.Summary, "conflict") {
			return nil
		}

		return err
	}

	return nil
}

// Download retrieves a remote file to a local path. The transfer goes to a
// temporary file first and is renamed into place so that a partial download
// never masquerades as a synchronized file.
func (c *Client) Download(ctx context.Context, remote, local string) error {
	arg, err := json.Marshal(map[string]any{"path": remote})
	if err != nil {
		return err
	}

	rq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.ContentURL+"/2/files/download", nil)
	if err != nil {
		return err
	}

	rq.Header.Set("Authorization", "Bearer "+c.token)
	rq.Header.Set("Dropbox-API-Arg", string(arg))
	rq.Header.Set("Dropbox-API-Select-User", c.memberID)

	response, err := c.HTTP.Do(rq)
	if err != nil {
		return err
	}

	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return apiError(response)
	}

	dir := filepath.Dir(local)
	if err := os.MkdirAll(dir, 0770); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".download")
	if err != nil {
		return err
	}

	defer func() {
		tmp.Close()
		os.Remove(tmp.Name())
	}()

	if _, err := io.Copy(tmp, response.Body); err != nil {
		return err
	}

	tmp.Close()

	return os.Rename(tmp.Name(), local)
}

// Upload stores a local file at a remote path, overwriting any previous
// revision.
func (c *Client) Upload(ctx context.Context, local, remote string) error {
	arg, err := json.Marshal(map[string]any{
		"path":       remote,
		"mode":       "overwrite",
		"autorename": false,
		"mute":       true,
	})
	if err != nil {
		return err
	}

	f, err := os.Open(local)
	if err != nil {
		return err
	}

	defer f.Close()

	rq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.ContentURL+"/2/files/upload", f)
	if err != nil {
		return err
	}

	rq.Header.Set("Authorization", "Bearer "+c.token)
	rq.Header.Set("Content-Type", "application/octet-stream")
	rq.Header.Set("Dropbox-API-Arg", string(arg))
	rq.Header.Set("Dropbox-API-Select-User", c.memberID)

	response, err := c.HTTP.Do(rq)
	if err != nil {
		return err
	}

	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return apiError(response)
	}

	return nil
}

// LatestForecast identifies the most recent forecast workbook in a remote
// folder, ignoring Excel lock files.
func (c *Client) LatestForecast(ctx context.Context, folder string) (Entry, error) {
	entries, err := c.ListFolder(ctx, folder)
	if err != nil {
		return Entry{}, err
	}

	workbooks := []Entry{}
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name, ".xlsx") && !strings.HasPrefix(entry.Name, "~") {
			workbooks = append(workbooks, entry)
		}
	}

	if len(workbooks) == 0 {
		return Entry{}, fmt.Errorf("no forecast workbooks in %s", folder)
	}

	sort.Slice(workbooks, func(i, j int) bool {
		return modified(workbooks[i]).After(modified(workbooks[j]))
	})

	return workbooks[0], nil
}

func (c *Client) rpc(ctx context.Context, endpoint string, body any, reply any) error {
	encoded, err := json.Marshal(body)
	if err != nil {
		return err
	}

	rq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(encoded))
	if err != nil {
		return err
	}

	rq.Header.Set("Authorization", "Bearer "+c.token)
	rq.Header.Set("Content-Type", "application/json")
	rq.Header.Set("Dropbox-API-Select-User", c.memberID)

	response, err := c.HTTP.Do(rq)
	if err != nil {
		return err
	}

	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return apiError(response)
	}

	if reply == nil {
		io.Copy(io.Discard, response.Body)
		return nil
	}

	return json.NewDecoder(response.Body).Decode(reply)
}

func apiError(response *http.Response) error {
	summary, _ := io.ReadAll(io.LimitReader(response.Body, 512))

	return &APIError{
		Status:  response.StatusCode,
		Summary: string(summary),
	}
}

func modified(e Entry) time.Time {
	datetime, err := time.Parse("2006-01-02T15:04:05Z", e.ServerModified)
	if err != nil {
		return time.Time{}
	}

	return datetime
}
