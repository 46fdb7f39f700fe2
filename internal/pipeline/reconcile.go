package pipeline

import (
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"stockcount/internal"
	"stockcount/internal/util"
)

// Reconciliation is the branch -> brand -> entries grouping, ordered by first
// appearance in today's schedule.
type Reconciliation struct {
	Branches  []*internal.BranchGroup
	Unmatched []internal.ScheduleRow
	Errors    []error
}

func (r *Reconciliation) EntryCount() int {
	n := 0
	for _, b := range r.Branches {
		n += b.EntryCount()
	}
	return n
}

type productIndex struct {
	byPair map[string][]internal.ProductRow
}

func pairKey(branch, brand string) string {
	return util.FoldKey(branch) + "\x00" + util.FoldKey(brand)
}

func buildProductIndex(products []internal.ProductRow) *productIndex {
	idx := &productIndex{byPair: map[string][]internal.ProductRow{}}
	for _, p := range products {
		key := pairKey(p.BranchName, p.Brand)
		idx.byPair[key] = append(idx.byPair[key], p)
	}
	return idx
}

type quantityResult struct {
	available decimal.Decimal
	actual    decimal.Decimal
	err       error
}

// Reconcile joins today's schedule rows to products on (branch, brand),
// compared case-insensitively. A pair scheduled twice is reconciled once.
// Products with a non-numeric quantity are reported and left out.
func Reconcile(schedule []internal.ScheduleRow, products []internal.ProductRow, logger *logrus.Logger) *Reconciliation {
	idx := buildProductIndex(products)
	rec := &Reconciliation{}
	branches := map[string]*internal.BranchGroup{}
	seenPairs := map[string]struct{}{}
	quantities := map[int]quantityResult{}

	for _, row := range schedule {
		key := pairKey(row.Branch, row.Brand)
		// a repeated pair would only re-emit the same entries
		if _, dup := seenPairs[key]; dup {
			continue
		}
		seenPairs[key] = struct{}{}

		matches := idx.byPair[key]
		if len(matches) == 0 {
			rec.Unmatched = append(rec.Unmatched, row)
			logger.WithFields(logrus.Fields{
				"branch": row.Branch,
				"brand":  row.Brand,
				"row":    row.RowNo,
			}).Warn("scheduled brand has no products in branch")
			continue
		}

		var entries []internal.MatchedEntry
		for _, p := range matches {
			q, ok := quantities[p.RowNo]
			if !ok {
				q = parseQuantities(p)
				quantities[p.RowNo] = q
				if q.err != nil {
					rec.Errors = append(rec.Errors, q.err)
				}
			}
			if q.err != nil {
				continue
			}
			entries = append(entries, internal.MatchedEntry{
				Schedule:   row,
				Product:    p,
				Available:  q.available,
				Actual:     q.actual,
				Difference: q.actual.Sub(q.available),
			})
		}
		if len(entries) == 0 {
			continue
		}

		branchKey := util.FoldKey(row.Branch)
		group, ok := branches[branchKey]
		if !ok {
			group = &internal.BranchGroup{
				Key:        branchKey,
				BranchName: util.FirstNonEmpty(util.NormalizeSpaces(entries[0].Product.BranchName), row.Branch),
			}
			branches[branchKey] = group
			rec.Branches = append(rec.Branches, group)
		}
		group.Brands = append(group.Brands, &internal.BrandGroup{
			Brand:   util.FirstNonEmpty(util.NormalizeSpaces(entries[0].Product.Brand), row.Brand),
			Entries: entries,
		})
	}
	return rec
}

func parseQuantities(p internal.ProductRow) quantityResult {
	available, err := util.ParseQuantity(p.AvailableQuantity)
	if err != nil {
		return quantityResult{err: &InvalidQuantityError{RowNo: p.RowNo, Field: ColAvailable, Value: p.AvailableQuantity, Err: err}}
	}
	actual, err := util.ParseQuantity(p.ActualQuantity)
	if err != nil {
		return quantityResult{err: &InvalidQuantityError{RowNo: p.RowNo, Field: ColActual, Value: p.ActualQuantity, Err: err}}
	}
	return quantityResult{available: available, actual: actual}
}
