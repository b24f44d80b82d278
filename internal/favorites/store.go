package favorites

import (
	"context"
	"errors"
	"strings"

	"StockWatch/internal/model"
)

var (
	ErrDuplicate    = errors.New("该股票已在自选列表中")
	ErrInvalidEntry = errors.New("股票代码和名称不能为空")
)

// DefaultEntries seeds an empty watchlist.
var DefaultEntries = []model.FavoriteEntry{
	{Code: "600000", Name: "浦发银行"},
	{Code: "000001", Name: "平安银行"},
	{Code: "600036", Name: "招商银行"},
	{Code: "000002", Name: "万科A"},
	{Code: "600519", Name: "贵州茅台"},
}

// Store persists the ordered watchlist. Every mutation returns the list as stored afterwards.
type Store interface {
	List(ctx context.Context) ([]model.FavoriteEntry, error)
	Add(ctx context.Context, entry model.FavoriteEntry) ([]model.FavoriteEntry, error)
	Remove(ctx context.Context, code string) ([]model.FavoriteEntry, error)
	Reorder(ctx context.Context, codes []string) ([]model.FavoriteEntry, error)
	Close() error
}

func validate(entry model.FavoriteEntry) (model.FavoriteEntry, error) {
	entry.Code = strings.TrimSpace(entry.Code)
	entry.Name = strings.TrimSpace(entry.Name)
	if entry.Code == "" || entry.Name == "" {
		return entry, ErrInvalidEntry
	}
	return entry, nil
}

func indexOf(list []model.FavoriteEntry, code string) int {
	for i, f := range list {
		if f.Code == code {
			return i
		}
	}
	return -1
}

// reorder keeps the entries named in codes, in that order. Unknown and
// repeated codes are skipped.
func reorder(list []model.FavoriteEntry, codes []string) []model.FavoriteEntry {
	out := make([]model.FavoriteEntry, 0, len(codes))
	seen := make(map[string]bool, len(codes))
	for _, code := range codes {
		if seen[code] {
			continue
		}
		if i := indexOf(list, code); i >= 0 {
			out = append(out, list[i])
			seen[code] = true
		}
	}
	return out
}

func cloneEntries(list []model.FavoriteEntry) []model.FavoriteEntry {
	out := make([]model.FavoriteEntry, len(list))
	copy(out, list)
	return out
}
