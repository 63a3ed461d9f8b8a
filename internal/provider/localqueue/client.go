package localqueue

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/pixway/pixway/internal/imaging"
	"github.com/pixway/pixway/internal/types"
)

// Client speaks the local queue backend's wire contract:
//   - POST {base}/upload/image   multipart asset upload -> {"name": ...}
//   - POST {base}/job            {"job": <workflow>}    -> {"job_id": ...}
//   - GET  {base}/history/{id}   -> {<node-id>: {"images": [{"filename", "type"}]}}
//   - GET  {base}/view?filename=...&type=...  -> rendered bytes
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a backend client.
func NewClient(baseURL string, client *http.Client) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    client,
	}
}

// outputNode is one entry of the job history's output mapping.
type outputNode struct {
	Images []artifactRef `json:"images"`
}

// artifactRef identifies one produced artifact in the backend's store.
type artifactRef struct {
	Filename string `json:"filename"`
	Type     string `json:"type"`
}

// UploadImage uploads source image bytes to the backend's asset store and
// returns the server-assigned filename.
func (c *Client) UploadImage(ctx context.Context, data []byte, mimeType string) (string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("image", uploadFileName(mimeType))
	if err != nil {
		return "", types.NewTransport("failed to build upload form: %v", err)
	}
	if _, err := part.Write(data); err != nil {
		return "", types.NewTransport("failed to build upload form: %v", err)
	}
	if err := writer.Close(); err != nil {
		return "", types.NewTransport("failed to build upload form: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/upload/image", &buf)
	if err != nil {
		return "", types.NewTransport("failed to create upload request: %v", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.http.Do(req)
	if err != nil {
		return "", types.NewTransport("asset upload failed: %v", err)
	}
	defer resp.Body.Close()

	payload, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", types.NewTransport("asset upload failed").WithStatus(resp.StatusCode).WithUpstream(payload)
	}

	var parsed struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(payload, &parsed); err != nil || parsed.Name == "" {
		return "", types.NewTransport("asset upload returned no filename").WithUpstream(payload)
	}
	return parsed.Name, nil
}

// SubmitJob posts the substituted workflow and returns the assigned job id.
func (c *Client) SubmitJob(ctx context.Context, job json.RawMessage) (string, error) {
	body, err := json.Marshal(map[string]json.RawMessage{"job": job})
	if err != nil {
		return "", types.NewTransport("failed to encode job: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/job", bytes.NewReader(body))
	if err != nil {
		return "", types.NewTransport("failed to create submit request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", types.NewTransport("job submission failed: %v", err)
	}
	defer resp.Body.Close()

	payload, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", types.NewTransport("job submission failed").WithStatus(resp.StatusCode).WithUpstream(payload)
	}

	var parsed struct {
		JobID string `json:"job_id"`
	}
	if err := json.Unmarshal(payload, &parsed); err != nil || parsed.JobID == "" {
		return "", types.NewTransport("job submission returned no job id").WithUpstream(payload)
	}
	return parsed.JobID, nil
}

// JobHistory fetches the output mapping for a job. An empty mapping means
// the job has not produced output yet.
func (c *Client) JobHistory(ctx context.Context, jobID string) (map[string]outputNode, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/history/"+url.PathEscape(jobID), nil)
	if err != nil {
		return nil, types.NewTransport("failed to create history request: %v", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, types.NewTransport("history fetch failed: %v", err)
	}
	defer resp.Body.Close()

	payload, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, types.NewTransport("history fetch failed").WithStatus(resp.StatusCode).WithUpstream(payload)
	}

	var parsed map[string]outputNode
	if err := json.Unmarshal(payload, &parsed); err != nil {
		return nil, types.NewTransport("malformed history payload: %v", err).WithUpstream(payload)
	}
	return parsed, nil
}

// FetchArtifact downloads a rendered artifact by filename. The MIME type
// comes from the response's content-type header.
func (c *Client) FetchArtifact(ctx context.Context, ref artifactRef) (*types.InlineImage, error) {
	query := url.Values{"filename": {ref.Filename}}
	if ref.Type != "" {
		query.Set("type", ref.Type)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/view?"+query.Encode(), nil)
	if err != nil {
		return nil, types.NewTransport("failed to create artifact request: %v", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, types.NewTransport("artifact fetch failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, types.NewTransport("artifact fetch failed").WithStatus(resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, types.NewTransport("failed to read artifact: %v", err)
	}

	mime := resp.Header.Get("Content-Type")
	if mime == "" {
		mime = imaging.DefaultMimeType
	}
	return &types.InlineImage{Data: data, MimeType: mime}, nil
}

// uploadFileName picks an upload file name matching the MIME type.
func uploadFileName(mimeType string) string {
	switch mimeType {
	case "image/jpeg":
		return "source.jpg"
	case "image/webp":
		return "source.webp"
	default:
		return "source.png"
	}
}

// firstArtifact scans output nodes in sorted node-id order and returns the
// first produced image, if any.
func firstArtifact(outputs map[string]outputNode) (artifactRef, bool) {
	for _, nodeID := range sortedKeys(outputs) {
		for _, img := range outputs[nodeID].Images {
			if img.Filename != "" {
				return img, true
			}
		}
	}
	return artifactRef{}, false
}

func sortedKeys(m map[string]outputNode) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
