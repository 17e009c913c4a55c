package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"

	"github.com/dmitrijs2005/postkeeper/internal/client/models"
	"github.com/dmitrijs2005/postkeeper/internal/netx"
)

// CreatePost uploads a new post with the image at imagePath and returns the
// post's uuid. The file is streamed, not loaded into memory.
func (c *Client) CreatePost(ctx context.Context, title, text, imagePath string) (string, error) {
	f, err := os.Open(imagePath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		pw.CloseWithError(writePostForm(mw, title, text, filepath.Base(imagePath), f))
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/secure/post/create", pr)
	if err != nil {
		_ = pr.Close()
		return "", err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var out struct {
		UUID string `json:"uuid"`
	}
	if err := c.do(req, true, &out); err != nil {
		_ = pr.CloseWithError(err)
		return "", err
	}
	return out.UUID, nil
}

func writePostForm(mw *multipart.Writer, title, text, name string, r io.Reader) error {
	if err := mw.WriteField("title", title); err != nil {
		return err
	}
	if err := mw.WriteField("text", text); err != nil {
		return err
	}
	fw, err := mw.CreateFormFile("file", name)
	if err != nil {
		return err
	}
	if _, err := io.Copy(fw, r); err != nil {
		return err
	}
	return mw.Close()
}

// MyPosts lists the posts of the logged in user.
func (c *Client) MyPosts(ctx context.Context) ([]models.Post, error) {
	return c.listPosts(ctx, "/secure/post/my-posts", true)
}

// AllPosts lists every post.
func (c *Client) AllPosts(ctx context.Context) ([]models.Post, error) {
	return c.listPosts(ctx, "/post/all-posts", false)
}

func (c *Client) listPosts(ctx context.Context, path string, authed bool) ([]models.Post, error) {
	req, err := c.newJSONRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	var posts []models.Post
	if err := c.do(req, authed, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// GetPost fetches one post with its owner.
func (c *Client) GetPost(ctx context.Context, id string) (*models.Post, error) {
	req, err := c.newJSONRequest(ctx, http.MethodGet, "/post/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, err
	}

	var p models.Post
	if err := c.do(req, false, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// ImageURL is the address the image of post id can be downloaded from.
func (c *Client) ImageURL(id string) string {
	return c.baseURL + "/post/" + url.PathEscape(id) + "/image"
}

// DownloadImage saves the image of post id at dst and returns its size.
// Presigned redirects are followed.
func (c *Client) DownloadImage(ctx context.Context, id, dst string) (int64, error) {
	n, err := netx.DownloadToFile(ctx, c.http, c.ImageURL(id), dst)
	if err == nil {
		return n, nil
	}

	var se *netx.StatusError
	var ue *url.Error
	switch {
	case errors.As(err, &se):
		return 0, &APIError{Status: se.Code, Message: errorMessage([]byte(se.Body))}
	case ctx.Err() != nil:
		return 0, ctx.Err()
	case errors.As(err, &ue):
		return 0, fmt.Errorf("%w: %w", ErrUnavailable, err)
	default:
		return 0, err
	}
}
