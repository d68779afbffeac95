package prefs

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/ziadkadry99/product-advisor/internal/logger"
)

// Keys of the two persisted records.
const (
	KeySelectedProducts = "selected-products"
	KeyRTL              = "rtl-pref"
)

// LoadSelectedIDs reads the persisted selection. A missing or unparsable
// record yields an empty list.
func LoadSelectedIDs(ctx context.Context, s Store) ([]int, error) {
	raw, ok, err := s.Get(ctx, KeySelectedProducts)
	if err != nil {
		return []int{}, err
	}
	if !ok {
		return []int{}, nil
	}
	var ids []int
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		logger.Warn("ignoring unreadable selection record", "error", err)
		return []int{}, nil
	}
	if ids == nil {
		ids = []int{}
	}
	return ids, nil
}

// SaveSelectedIDs persists ids as a JSON array in selection order.
func SaveSelectedIDs(ctx context.Context, s Store, ids []int) error {
	if ids == nil {
		ids = []int{}
	}
	data, err := json.Marshal(ids)
	if err != nil {
		return err
	}
	return s.Set(ctx, KeySelectedProducts, string(data))
}

// LoadRTL reads the layout-direction preference, defaulting to false.
func LoadRTL(ctx context.Context, s Store) (bool, error) {
	raw, ok, err := s.Get(ctx, KeyRTL)
	if err != nil || !ok {
		return false, err
	}
	var v bool
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		logger.Warn("ignoring unreadable rtl record", "error", err)
		return false, nil
	}
	return v, nil
}

// SaveRTL persists the layout-direction preference.
func SaveRTL(ctx context.Context, s Store, rtl bool) error {
	return s.Set(ctx, KeyRTL, strconv.FormatBool(rtl))
}
