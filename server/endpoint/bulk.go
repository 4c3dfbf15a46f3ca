package endpoint

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	apperrors "github.com/kbukum/ingest/errors"
	"github.com/kbukum/ingest/ingest"
	"github.com/kbukum/ingest/server"
	"github.com/kbukum/ingest/validation"
)

// BulkRequest is the body of POST /_bulk.
type BulkRequest struct {
	Items []*ingest.IndexRequest `json:"items"`
}

// BulkItem reports one request of a bulk call.
type BulkItem struct {
	Index   string               `json:"_index"`
	Type    string               `json:"_type,omitempty"`
	ID      string               `json:"_id"`
	Routing string               `json:"_routing,omitempty"`
	Parent  string               `json:"_parent,omitempty"`
	Status  int                  `json:"status"`
	Source  map[string]any       `json:"_source,omitempty"`
	Error   *apperrors.ErrorBody `json:"error,omitempty"`
}

// BulkResponse is the answer to POST /_bulk.
type BulkResponse struct {
	Took   int64      `json:"took"`
	Errors bool       `json:"errors"`
	Items  []BulkItem `json:"items"`
}

// BulkExecutor runs index requests through their pipelines.
type BulkExecutor interface {
	Execute(requests []*ingest.IndexRequest) <-chan ingest.BatchResult
}

// Bulk runs every item through its pipeline and reports the transformed
// documents. ?pipeline= applies to items that name none. Items without an
// _id get a generated one. An unknown pipeline or a rejected batch fails the
// whole call.
func Bulk(exec BulkExecutor) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		var req BulkRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			server.RespondWithError(c, apperrors.InvalidInput("body", err.Error()))
			return
		}
		defaultPipeline := c.Query("pipeline")

		v := validation.New().Custom(len(req.Items) > 0, "items", "must not be empty")
		for i, item := range req.Items {
			if item == nil {
				v.AddError("items", "must not contain null entries")
				break
			}
			v.Required(indexField(i), item.Index)
		}
		if err := v.Validate(); err != nil {
			server.RespondWithError(c, err)
			return
		}

		for _, item := range req.Items {
			if item.Pipeline == "" {
				item.Pipeline = defaultPipeline
			}
			if item.ID == "" {
				item.ID = uuid.NewString()
			}
		}

		var result ingest.BatchResult
		select {
		case result = <-exec.Execute(req.Items):
		case <-c.Request.Context().Done():
			server.RespondWithError(c, apperrors.ServiceUnavailable("ingest"))
			return
		}
		if result.Err != nil {
			server.RespondWithError(c, result.Err)
			return
		}

		failed := make(map[int]error, len(result.Items))
		for _, r := range result.Items {
			if r.Err != nil {
				failed[r.Index] = r.Err
			}
		}

		resp := BulkResponse{Items: make([]BulkItem, 0, len(req.Items))}
		for i, item := range req.Items {
			bi := BulkItem{
				Index:   item.Index,
				Type:    item.Type,
				ID:      item.ID,
				Routing: item.Routing,
				Parent:  item.Parent,
				Status:  http.StatusCreated,
				Source:  item.Source,
			}
			if err, ok := failed[i]; ok {
				body := apperrors.Describe(err)
				bi.Status = http.StatusBadRequest
				bi.Source = nil
				bi.Error = &body
				resp.Errors = true
			}
			resp.Items = append(resp.Items, bi)
		}
		resp.Took = time.Since(start).Milliseconds()
		c.JSON(http.StatusOK, resp)
	}
}

func indexField(i int) string {
	return "items[" + strconv.Itoa(i) + "]._index"
}
