package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"go.uber.org/zap"

	"github.com/archetype/archetype/internal/api/response"
	"github.com/archetype/archetype/internal/core/criteria"
	"github.com/archetype/archetype/internal/core/users"
	"github.com/archetype/archetype/internal/core/validation"
)

type UserHandler struct {
	users     *users.Service
	validator *validation.Validator
	logger    *zap.Logger
}

func NewUserHandler(svc *users.Service, validator *validation.Validator, logger *zap.Logger) *UserHandler {
	return &UserHandler{users: svc, validator: validator, logger: logger}
}

// SearchRequest is the JSON body of POST /api/users/search.
type SearchRequest struct {
	Filters []SearchFilter `json:"filters"`
	OrderBy string         `json:"order_by"`
	Order   string         `json:"order"`
	Limit   *uint32        `json:"limit"`
	Offset  *uint32        `json:"offset"`
}

type SearchFilter struct {
	Field    string `json:"field"`
	Operator string `json:"operator"`
	Value    string `json:"value"`
}

func (r SearchRequest) raw() criteria.RawQuery {
	q := criteria.RawQuery{
		OrderBy:   r.OrderBy,
		OrderType: r.Order,
		Limit:     r.Limit,
		Offset:    r.Offset,
	}
	if r.Filters != nil {
		q.Filters = make([]map[string]string, 0, len(r.Filters))
		for _, f := range r.Filters {
			q.Filters = append(q.Filters, map[string]string{
				criteria.KeyField:    f.Field,
				criteria.KeyOperator: f.Operator,
				criteria.KeyValue:    f.Value,
			})
		}
	}
	return q
}

// List handles GET /api/users with filters encoded in the query string.
func (h *UserHandler) List(c *gin.Context) {
	h.list(c, ParseListQuery(c.Request.URL.Query()))
}

// Search handles POST /api/users/search with filters in a JSON body.
func (h *UserHandler) Search(c *gin.Context) {
	body, ok := validateBody(c, h.validator, validation.SchemaSearch)
	if !ok {
		return
	}

	var req SearchRequest
	if err := binding.JSON.BindBody(body, &req); err != nil {
		response.BadRequest(c, "malformed request body", err.Error())
		return
	}

	h.list(c, req.raw())
}

func (h *UserHandler) list(c *gin.Context, raw criteria.RawQuery) {
	result, err := h.users.List(c.Request.Context(), raw)
	if err != nil {
		if errors.Is(err, users.ErrInvalidQuery) {
			response.BadRequest(c, "invalid query", err.Error())
			return
		}
		internalError(c, h.logger, "list users", err)
		return
	}

	response.Page(c, result.Users, response.NewPagination(result.Limit, result.Offset, result.Total))
}

func (h *UserHandler) Get(c *gin.Context) {
	user, err := h.users.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, users.ErrInvalidID):
			response.BadRequest(c, "invalid user id", err.Error())
		case errors.Is(err, users.ErrNotFound):
			response.NotFound(c, "user not found")
		default:
			internalError(c, h.logger, "get user", err)
		}
		return
	}

	response.OK(c, user)
}
