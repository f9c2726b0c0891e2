package embedder

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/kozaktomas/staff-clock/internal/facematch"
)

const (
	defaultURL     = "http://localhost:8000"
	defaultTimeout = 10 * time.Second
	maxResponse    = 1 << 20
)

var (
	// ErrNoFace and ErrMultipleFaces are input errors: the frame must show exactly one face.
	ErrNoFace        = fmt.Errorf("%w: no face detected", facematch.ErrInvalidInput)
	ErrMultipleFaces = fmt.Errorf("%w: more than one face detected", facematch.ErrInvalidInput)
	// ErrUnavailable is returned when the embedding service cannot be reached or fails.
	ErrUnavailable = errors.New("embedding service unavailable")
)

// Client calls the face embedding service.
type Client struct {
	baseURL      string
	maxImageSize int
	client       *http.Client
}

// NewClient creates a face embedding client. maxImageSize <= 0 disables downscaling.
func NewClient(baseURL string, maxImageSize int) *Client {
	if baseURL == "" {
		baseURL = defaultURL
	}
	return &Client{
		baseURL:      strings.TrimSuffix(baseURL, "/"),
		maxImageSize: maxImageSize,
		client:       &http.Client{Timeout: defaultTimeout},
	}
}

// FaceDetection is a single face found in a frame
type FaceDetection struct {
	FaceIndex int       `json:"face_index"`
	Dim       int       `json:"dim"`
	Embedding []float32 `json:"embedding"`
	BBox      []float64 `json:"bbox"` // [x1, y1, x2, y2]
	DetScore  float64   `json:"det_score"`
}

// FaceResponse is the body returned by POST /embed/face
type FaceResponse struct {
	FacesCount int             `json:"faces_count"`
	Faces      []FaceDetection `json:"faces"`
	Model      string          `json:"model"`
}

// EmbedFace returns the embedding of the single face in the frame and the model that produced it.
func (c *Client) EmbedFace(ctx context.Context, image []byte) ([]float32, string, error) {
	resp, err := c.DetectFaces(ctx, image)
	if err != nil {
		return nil, "", err
	}

	switch len(resp.Faces) {
	case 0:
		return nil, "", ErrNoFace
	case 1:
	default:
		return nil, "", fmt.Errorf("%w (%d)", ErrMultipleFaces, len(resp.Faces))
	}

	face := resp.Faces[0]
	if len(face.Embedding) == 0 {
		return nil, "", fmt.Errorf("%w: empty embedding returned", ErrUnavailable)
	}
	return face.Embedding, resp.Model, nil
}

// DetectFaces uploads the frame and returns every detected face.
func (c *Client) DetectFaces(ctx context.Context, image []byte) (*FaceResponse, error) {
	if len(image) == 0 {
		return nil, fmt.Errorf("%w: empty image", facematch.ErrInvalidInput)
	}

	data := image
	if c.maxImageSize > 0 {
		resized, err := ResizeImage(image, c.maxImageSize)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", facematch.ErrInvalidInput, err)
		}
		data = resized
	}

	body, err := c.postMultipartImage(ctx, "/embed/face", data)
	if err != nil {
		return nil, err
	}

	var faceResp FaceResponse
	if err := json.Unmarshal(body, &faceResp); err != nil {
		return nil, fmt.Errorf("%w: failed to parse response: %w", ErrUnavailable, err)
	}
	return &faceResp, nil
}

// Health checks that the embedding service answers.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}
	return nil
}

// postMultipartImage posts the image as the "file" form field with its detected content type.
func (c *Client) postMultipartImage(ctx context.Context, endpoint string, imageData []byte) ([]byte, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="frame.jpg"`)
	h.Set("Content-Type", http.DetectContentType(imageData))
	part, err := writer.CreatePart(h)
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := part.Write(imageData); err != nil {
		return nil, fmt.Errorf("failed to write image data: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("embedding request: %w", ctx.Err())
		}
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponse))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %w", ErrUnavailable, err)
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		return body, nil
	case resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnprocessableEntity:
		return nil, fmt.Errorf("%w: embedding service rejected image: %s", facematch.ErrInvalidInput, strings.TrimSpace(string(body)))
	default:
		return nil, fmt.Errorf("%w: status %d: %s", ErrUnavailable, resp.StatusCode, strings.TrimSpace(string(body)))
	}
}
