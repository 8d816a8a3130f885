package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/user00265/ctydatapi/internal/cty"
	"github.com/user00265/ctydatapi/internal/dxcc"
	"github.com/user00265/ctydatapi/internal/logging"
	"github.com/user00265/ctydatapi/internal/utils"
)

// Source provides the index currently in service.
type Source interface {
	Index() *dxcc.Index
	GetLastDownloadTime(ctx context.Context) (time.Time, error)
}

// LookupCache stores lookup results keyed by index version and callsign.
type LookupCache interface {
	Get(ctx context.Context, version, callsign string, dst interface{}) (bool, error)
	Set(ctx context.Context, version, callsign string, v interface{}) error
}

// CountryInfo is a country record as served by the API.
type CountryInfo struct {
	cty.Country
	Flag string `json:"flag,omitempty" msgpack:"flag"`
	WAE  bool   `json:"wae" msgpack:"wae"`
}

// LookupResult is the resolved entity for one callsign.
type LookupResult struct {
	CountryInfo
	Callsign string `json:"callsign" msgpack:"callsign"`
	// Match is the alias that matched, upper-case.
	Match string `json:"match" msgpack:"match"`
	Exact bool   `json:"exact" msgpack:"exact"`
}

// BatchResult is one entry of a batch lookup response.
type BatchResult struct {
	Callsign string        `json:"callsign"`
	Found    bool          `json:"found"`
	Result   *LookupResult `json:"result,omitempty"`
	Error    string        `json:"error,omitempty"`
}

type batchRequest struct {
	Callsigns []string `json:"callsigns" binding:"required"`
}

const errNotLoaded = "country data is not loaded yet"

func newCountryInfo(c cty.Country) CountryInfo {
	return CountryInfo{Country: c, Flag: dxcc.Flag(c.PrimaryPrefix), WAE: c.IsWAE()}
}

type handler struct {
	src      Source
	cache    LookupCache
	maxBatch int
}

// SetupRoutes configures all API endpoints. cache may be nil.
func SetupRoutes(r *gin.RouterGroup, src Source, cache LookupCache, maxBatch int) {
	h := &handler{src: src, cache: cache, maxBatch: maxBatch}

	// GET /lookup/:callsign - Resolve one callsign. Callsigns may contain '/',
	// so the parameter is a catch-all.
	r.GET("/lookup/*callsign", h.lookupOne)

	// POST /lookup - Resolve up to maxBatch callsigns: {"callsigns": ["OH2BH", ...]}
	r.POST("/lookup", h.lookupBatch)

	// GET /countries - All country records in file order.
	r.GET("/countries", func(c *gin.Context) {
		idx := src.Index()
		if idx == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": errNotLoaded})
			return
		}
		countries := idx.Countries()
		out := make([]CountryInfo, 0, len(countries))
		for _, country := range countries {
			out = append(out, newCountryInfo(country))
		}
		c.JSON(http.StatusOK, out)
	})

	// GET /countries/:prefix - One country record by primary prefix.
	r.GET("/countries/:prefix", func(c *gin.Context) {
		idx := src.Index()
		if idx == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": errNotLoaded})
			return
		}
		country, ok := idx.Country(c.Param("prefix"))
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("No country with primary prefix %s", strings.ToUpper(c.Param("prefix")))})
			return
		}
		c.JSON(http.StatusOK, newCountryInfo(country))
	})

	// GET /stats - Index size, version and age.
	r.GET("/stats", func(c *gin.Context) {
		idx := src.Index()
		st := idx.Stats()
		resp := gin.H{
			"loaded":    idx != nil,
			"countries": st.Countries,
			"callsigns": st.Callsigns,
			"prefixes":  st.Prefixes,
			"version":   st.Version,
		}
		if last, err := src.GetLastDownloadTime(c.Request.Context()); err != nil {
			logging.Warn("Failed to read country file age: %v", err)
		} else if !last.IsZero() {
			resp["cty_last_updated"] = last.UTC().Format(time.RFC3339)
		}
		c.JSON(http.StatusOK, resp)
	})
}

func (h *handler) lookupOne(c *gin.Context) {
	idx := h.src.Index()
	if idx == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": errNotLoaded})
		return
	}

	call := utils.NormalizeCallsign(strings.Trim(c.Param("callsign"), "/"))
	if !utils.ValidCallsign(call) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid callsign"})
		return
	}

	res, ok := h.resolve(c.Request.Context(), idx, call)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("No match for callsign %s", call)})
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *handler) lookupBatch(c *gin.Context) {
	idx := h.src.Index()
	if idx == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": errNotLoaded})
		return
	}

	var req batchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Invalid request body: %v", err)})
		return
	}
	if len(req.Callsigns) > h.maxBatch {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Too many callsigns: %d (max %d)", len(req.Callsigns), h.maxBatch)})
		return
	}

	out := make([]BatchResult, 0, len(req.Callsigns))
	for _, raw := range req.Callsigns {
		entry := BatchResult{Callsign: raw}
		call := utils.NormalizeCallsign(raw)
		if !utils.ValidCallsign(call) {
			entry.Error = "Invalid callsign"
		} else if res, ok := h.resolve(c.Request.Context(), idx, call); ok {
			entry.Found = true
			entry.Result = &res
		}
		out = append(out, entry)
	}
	c.JSON(http.StatusOK, out)
}

// resolve looks the callsign up, consulting the cache first. Cache failures
// are logged and the index answers instead.
func (h *handler) resolve(ctx context.Context, idx *dxcc.Index, call string) (LookupResult, bool) {
	version := idx.Version()
	if h.cache != nil && version != "" {
		var cached LookupResult
		hit, err := h.cache.Get(ctx, version, call, &cached)
		if err != nil {
			logging.Warn("Lookup cache read failed for %s: %v", call, err)
		} else if hit {
			return cached, true
		}
	}

	m, ok := idx.Lookup(call)
	if !ok {
		return LookupResult{}, false
	}
	res := LookupResult{
		CountryInfo: newCountryInfo(m.Country),
		Callsign:    call,
		Match:       strings.ToUpper(m.Key),
		Exact:       m.Exact,
	}

	if h.cache != nil && version != "" {
		if err := h.cache.Set(ctx, version, call, res); err != nil {
			logging.Warn("Lookup cache write failed for %s: %v", call, err)
		}
	}
	return res, true
}
