package pagination

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// MaxPageSize is the largest maxResults any list call accepts. Most resources
// cap it at 50; comment threads and comments allow 100.
const MaxPageSize = 100

// MaxBatchSize is the most ids one request may carry.
const MaxBatchSize = 50

// DefaultBatchSize is the number of ids sent per batch request.
const DefaultBatchSize = MaxBatchSize

// ErrInvalidDescriptor is returned for descriptors that cannot be traversed.
var ErrInvalidDescriptor = errors.New("invalid endpoint descriptor")

// Descriptor describes one traversal. It is treated as immutable: Params are
// copied for every request.
type Descriptor struct {
	// Name labels logs and metrics. Defaults to Path.
	Name string

	// Path of the resource relative to the API base URL, e.g. "videos".
	Path string

	// Params sent with every request (part, filters, ...).
	Params url.Values

	// IDParam receives the comma-joined ids of a batch request.
	IDParam string

	// BatchSize bounds the ids per batch request. Zero means DefaultBatchSize.
	BatchSize int

	// PageSize is sent as maxResults. Zero omits the parameter.
	PageSize int

	// TimeField is the record field holding the item timestamp, used by CutoffAt.
	TimeField string
}

// Validate reports configuration errors.
func (d Descriptor) Validate() error {
	if strings.Trim(d.Path, "/") == "" {
		return fmt.Errorf("%w: path is required", ErrInvalidDescriptor)
	}
	if d.PageSize < 0 || d.PageSize > MaxPageSize {
		return fmt.Errorf("%w: page size must be between 0 and %d (got %d)", ErrInvalidDescriptor, MaxPageSize, d.PageSize)
	}
	if d.BatchSize < 0 || d.BatchSize > MaxBatchSize {
		return fmt.Errorf("%w: batch size must be between 0 and %d (got %d)", ErrInvalidDescriptor, MaxBatchSize, d.BatchSize)
	}
	return nil
}

// CutoffAt returns a Cutoff condition on the descriptor's TimeField.
// It returns nil (no condition) when t is zero or no TimeField is set.
func (d Descriptor) CutoffAt(t time.Time) Condition {
	if t.IsZero() || d.TimeField == "" {
		return nil
	}
	return Cutoff(d.TimeField, t)
}

func (d Descriptor) name() string {
	if d.Name != "" {
		return d.Name
	}
	return strings.Trim(d.Path, "/")
}

func (d Descriptor) batchSize() int {
	if d.BatchSize > 0 {
		return d.BatchSize
	}
	return DefaultBatchSize
}

// pageParams builds the query for the page addressed by cursor.
func (d Descriptor) pageParams(cursor string) url.Values {
	params := cloneValues(d.Params)
	if d.PageSize > 0 {
		params.Set("maxResults", strconv.Itoa(d.PageSize))
	}
	if cursor != "" {
		params.Set("pageToken", cursor)
	}
	return params
}

// batchParams builds the query for one chunk of ids.
func (d Descriptor) batchParams(ids []string) url.Values {
	params := cloneValues(d.Params)
	params.Set(d.IDParam, strings.Join(ids, ","))
	if d.PageSize > 0 {
		params.Set("maxResults", strconv.Itoa(d.PageSize))
	}
	return params
}

func cloneValues(v url.Values) url.Values {
	out := make(url.Values, len(v)+2)
	for k, vs := range v {
		out[k] = append([]string(nil), vs...)
	}
	return out
}
