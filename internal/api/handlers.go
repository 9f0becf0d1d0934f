package api

import (
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	chi "github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"newsLedger/internal/apperr"
	"newsLedger/internal/fingerprint"
	"newsLedger/internal/identity"
	"newsLedger/internal/model"
	"newsLedger/internal/submission"
	"newsLedger/internal/verification"
)

const (
	defaultPage  = 1
	defaultLimit = 10
	maxLimit     = 100
	maxPage      = 1_000_000
)

type handlers struct {
	deps   Deps
	logger *zap.Logger
}

type statusResponse struct {
	Status      string          `json:"status"`
	TestingMode bool            `json:"testingMode"`
	ChainMode   model.ChainMode `json:"chainMode"`
}

func (h *handlers) status(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, statusResponse{
		Status:      "ok",
		TestingMode: h.deps.Mode.Testing(),
		ChainMode:   h.deps.Mode,
	})
}

func (h *handlers) listArticles(w http.ResponseWriter, r *http.Request) {
	page := queryInt(r, "page", defaultPage)
	limit := queryInt(r, "limit", defaultLimit)
	if limit > maxLimit {
		limit = maxLimit
	}
	if page > maxPage {
		page = maxPage
	}

	total, err := h.deps.Store.Count(r.Context())
	if err != nil {
		h.writeError(w, r, apperr.Wrap(apperr.RemoteUnavailable, err, "failed to fetch articles"))
		return
	}
	articles, err := h.deps.Store.List(r.Context(), limit, (page-1)*limit)
	if err != nil {
		h.writeError(w, r, apperr.Wrap(apperr.RemoteUnavailable, err, "failed to fetch articles"))
		return
	}

	writeJSON(w, http.StatusOK, model.ArticlePage{
		Articles:    articles,
		TotalPages:  int(math.Ceil(float64(total) / float64(limit))),
		CurrentPage: page,
	})
}

func (h *handlers) getArticle(w http.ResponseWriter, r *http.Request) {
	article, found, err := h.deps.Store.FindByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, apperr.Wrap(apperr.RemoteUnavailable, err, "failed to fetch article"))
		return
	}
	if !found {
		h.writeError(w, r, apperr.New(apperr.NotFound, "article not found"))
		return
	}
	writeJSON(w, http.StatusOK, article)
}

type submitResponse struct {
	Message     string            `json:"message"`
	ArticleID   string            `json:"articleId"`
	ContentHash string            `json:"contentHash"`
	ChainStatus model.ChainStatus `json:"chainStatus"`
	ChainTxRef  string            `json:"chainTxRef,omitempty"`
	ChainError  string            `json:"chainError,omitempty"`
	Article     model.Article     `json:"article"`
}

func (h *handlers) submitArticle(w http.ResponseWriter, r *http.Request) {
	var req submission.Request
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	res, err := h.deps.Submitter.Submit(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	res.Article.ContentText = ""
	writeJSON(w, http.StatusCreated, submitResponse{
		Message:     "Article submitted successfully",
		ArticleID:   res.Article.ID,
		ContentHash: res.Article.ContentHash,
		ChainStatus: res.ChainStatus,
		ChainTxRef:  res.ChainTxRef,
		ChainError:  res.ChainError,
		Article:     res.Article,
	})
}

type metadataResponse struct {
	Title           string     `json:"title"`
	SourceName      string     `json:"source_name"`
	PublicationDate *time.Time `json:"publication_date"`
	Description     string     `json:"description"`
	ContentHash     string     `json:"content_hash"`
}

func (h *handlers) fetchMetadata(w http.ResponseWriter, r *http.Request) {
	u, err := submission.ValidateURL(r.URL.Query().Get("url"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	extracted, err := h.deps.Fetcher.Fetch(r.Context(), u.String())
	if err != nil {
		if !apperr.Is(err, apperr.ExtractionFailed) {
			err = apperr.Wrap(apperr.ExtractionFailed, err, "failed to extract article content")
		}
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, metadataResponse{
		Title:           extracted.Title,
		SourceName:      submission.SourceName(u),
		PublicationDate: extracted.PublishedAt,
		Description:     extracted.Description,
		ContentHash:     fingerprint.Sum(extracted.Text),
	})
}

type chainResponse struct {
	Verified bool             `json:"verified"`
	Data     *model.ChainData `json:"data"`
}

type verifyResponse struct {
	Verified   bool           `json:"verified"`
	Source     *model.Source  `json:"source"`
	Hash       string         `json:"hash"`
	Article    *model.Article `json:"article"`
	Blockchain chainResponse  `json:"blockchain"`
}

func newVerifyResponse(v model.Verdict) verifyResponse {
	resp := verifyResponse{
		Verified:   v.Verified,
		Hash:       v.Hash,
		Blockchain: chainResponse{Verified: v.Chain.Verified},
	}
	if v.Article != nil {
		article := *v.Article
		article.ContentText = ""
		resp.Article = &article
	}
	if v.Source != model.SourceNone {
		source := v.Source
		resp.Source = &source
	}
	if v.Chain.Record != nil {
		data := v.Chain.Record.Data()
		resp.Blockchain.Data = &data
	}
	return resp
}

func (h *handlers) verify(w http.ResponseWriter, r *http.Request) {
	var req verification.Request
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	h.runVerify(w, r, req)
}

func (h *handlers) verifyHash(w http.ResponseWriter, r *http.Request) {
	h.runVerify(w, r, verification.Request{Hash: chi.URLParam(r, "hash")})
}

func (h *handlers) verifyURL(w http.ResponseWriter, r *http.Request) {
	h.runVerify(w, r, verification.Request{URL: r.URL.Query().Get("url")})
}

func (h *handlers) runVerify(w http.ResponseWriter, r *http.Request, req verification.Request) {
	verdict, err := h.deps.Verifier.Verify(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newVerifyResponse(verdict))
}

type userResponse struct {
	Address  string     `json:"address"`
	Verified bool       `json:"verified"`
	Role     model.Role `json:"role"`
	RoleName string     `json:"roleName"`
}

func (h *handlers) verifyUser(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Address string `json:"address"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	user, err := h.deps.Identity.Verify(r.Context(), req.Address)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, userResponse{
		Address:  user.Address,
		Verified: user.Verified,
		Role:     user.Role,
		RoleName: user.Role.String(),
	})
}

type roleResponse struct {
	Success bool       `json:"success"`
	Address string     `json:"address"`
	Role    model.Role `json:"role"`
}

func (h *handlers) updateRole(w http.ResponseWriter, r *http.Request) {
	if !h.deps.Mode.Testing() {
		h.writeError(w, r, identity.RoleUpdateForbidden())
		return
	}

	var req struct {
		Address string `json:"address"`
		Role    *int   `json:"role"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	if req.Role == nil {
		h.writeError(w, r, apperr.New(apperr.InvalidInput, "role is required"))
		return
	}
	if *req.Role < 0 || *req.Role > math.MaxUint8 {
		h.writeError(w, r, apperr.New(apperr.InvalidInput, "invalid role"))
		return
	}

	user, err := h.deps.Identity.UpdateRole(r.Context(), req.Address, model.Role(*req.Role))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, roleResponse{Success: true, Address: user.Address, Role: user.Role})
}

// queryInt reads a positive integer query parameter, falling back to def.
func queryInt(r *http.Request, key string, def int) int {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return def
	}
	return n
}
