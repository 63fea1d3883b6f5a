package overlap

import "github.com/shopspring/decimal"

// Report is the result of one analysis run.
type Report struct {
	Fragments OverlapReport
	Receipts  ReceiptTable
	// Duplicates lists raw names appearing on more than one input record.
	Duplicates []string
	Stats      Stats
}

// Stats summarizes a report for logging.
type Stats struct {
	Entities      int
	Fragments     int
	Lengths       int
	Committees    int
	TotalReceipts decimal.Decimal
}

// Analyze runs the full pipeline over entities in retrieval order.
func Analyze(entities []Entity) (*Report, error) {
	if err := Validate(entities); err != nil {
		return nil, err
	}

	idx := BuildIndex(entities)
	ranked := idx.Rank()

	receipts, err := Aggregate(entities, ranked)
	if err != nil {
		return nil, err
	}

	return &Report{
		Fragments:  ranked,
		Receipts:   receipts,
		Duplicates: idx.Duplicates(),
		Stats: Stats{
			Entities:      len(entities),
			Fragments:     ranked.FragmentCount(),
			Lengths:       len(ranked),
			Committees:    len(receipts),
			TotalReceipts: receipts.Total(),
		},
	}, nil
}
