package output

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/agentstation/qiitabrowser/internal/transport"
	"github.com/agentstation/qiitabrowser/pkg/qiita"
)

// CacheInfo describes the HTTP response cache.
type CacheInfo struct {
	Backend  string `json:"backend" yaml:"backend"`
	Dir      string `json:"dir,omitempty" yaml:"dir,omitempty"`
	MaxSize  int64  `json:"max_size" yaml:"max_size"`
	Size     int64  `json:"size" yaml:"size"`
	Percent  string `json:"used" yaml:"used"`
	Writable bool   `json:"writable" yaml:"writable"`
}

// NewCacheInfo summarizes c.
func NewCacheInfo(c transport.Cache, writable bool) CacheInfo {
	size, maxSize := c.Size(), c.MaxSize()
	pct := 0.0
	if maxSize > 0 {
		pct = float64(size) / float64(maxSize) * 100
	}
	return CacheInfo{
		Backend:  c.Backend(),
		Dir:      c.Dir(),
		MaxSize:  maxSize,
		Size:     size,
		Percent:  fmt.Sprintf("%.1f%%", pct),
		Writable: writable,
	}
}

// ItemsToTableData converts favable items to a table.
func ItemsToTableData(items []qiita.FavableItem) Data {
	rows := make([][]string, 0, len(items))
	for _, it := range items {
		fav := ""
		if it.Faved {
			fav = "★"
		}
		tags := make([]string, 0, len(it.Item.Tags))
		for _, t := range it.Item.Tags {
			tags = append(tags, t.Name)
		}
		rows = append(rows, []string{
			fav,
			it.Item.ID,
			truncate(it.Item.Title, 60),
			it.Item.User.ID,
			strconv.Itoa(it.Item.LikesCount),
			strings.Join(tags, ","),
		})
	}

	return Data{
		Headers:         []string{"", "ID", "Title", "Author", "Likes", "Tags"},
		Rows:            rows,
		ColumnAlignment: []Align{AlignCenter, AlignLeft, AlignLeft, AlignLeft, AlignRight, AlignLeft},
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

// FormatItems writes items in the given format. Table output uses the
// item columns; other formats carry the full models.
func FormatItems(w io.Writer, items []qiita.FavableItem, format string) error {
	f := DetectFormat(format)
	var data any = items
	if f == FormatTable {
		data = ItemsToTableData(items)
	}
	return NewFormatter(f).Format(w, data)
}

// FormatAny writes data in the given format.
func FormatAny(w io.Writer, data any, format string) error {
	return NewFormatter(DetectFormat(format)).Format(w, data)
}
