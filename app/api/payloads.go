package api

import (
	"net/http"

	"github.com/Semior001/aidhub/app/content"
	"github.com/go-chi/render"
)

// ArticleResponse is the response payload for a catalog article.
type ArticleResponse struct {
	content.Article

	Category string `json:"category"`
	Excerpt  string `json:"excerpt,omitempty"`
}

// NewArticleResponse builds the payload with the computed fields filled.
func NewArticleResponse(a content.Article) *ArticleResponse {
	return &ArticleResponse{
		Article:  a,
		Category: content.GuessCategory(a),
		Excerpt:  a.Excerpt(200),
	}
}

// Render implements render.Renderer.
func (rd *ArticleResponse) Render(_ http.ResponseWriter, _ *http.Request) error { return nil }

// NewArticleListResponse builds payloads for a list of articles.
func NewArticleListResponse(articles []content.Article) []render.Renderer {
	list := []render.Renderer{}
	for _, a := range articles {
		list = append(list, NewArticleResponse(a))
	}

	return list
}

// IssueResponse is the response payload for a corpus issue.
type IssueResponse struct {
	content.Issue
}

// Render implements render.Renderer.
func (rd *IssueResponse) Render(_ http.ResponseWriter, _ *http.Request) error { return nil }

// NewIssueListResponse builds payloads for a list of issues.
func NewIssueListResponse(issues []content.Issue) []render.Renderer {
	list := []render.Renderer{}
	for _, issue := range issues {
		list = append(list, &IssueResponse{Issue: issue})
	}

	return list
}

// ErrResponse renderer type for handling all sorts of errors.
type ErrResponse struct {
	Err            error `json:"-"` // low-level runtime error
	HTTPStatusCode int   `json:"-"` // http response status code

	StatusText string `json:"status"`          // user-level status message
	ErrorText  string `json:"error,omitempty"` // application-level error message, for debugging
}

// Render implements render.Renderer.
func (e *ErrResponse) Render(_ http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.HTTPStatusCode)

	return nil
}

// ErrInvalidRequest makes a 400 error response.
func ErrInvalidRequest(err error) render.Renderer {
	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: http.StatusBadRequest,
		StatusText:     "Invalid request.",
		ErrorText:      err.Error(),
	}
}

// ErrRender makes a 422 error response.
func ErrRender(err error) render.Renderer {
	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: http.StatusUnprocessableEntity,
		StatusText:     "Error rendering response.",
		ErrorText:      err.Error(),
	}
}

// ErrInternal makes a 500 error response.
func ErrInternal(err error) render.Renderer {
	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: http.StatusInternalServerError,
		StatusText:     "Internal server error.",
		ErrorText:      err.Error(),
	}
}

// ErrNotFound is the 404 error response.
var ErrNotFound = &ErrResponse{HTTPStatusCode: http.StatusNotFound, StatusText: "Resource not found."}

// ErrForbidden is the 403 error response.
var ErrForbidden = &ErrResponse{HTTPStatusCode: http.StatusForbidden, StatusText: "Forbidden."}
