package data

import "context"

// Batch is one mini-batch of feature rows and their targets.
type Batch struct {
	X [][]float64
	Y []float64
}

// Batches emits X/y in mini-batches of batchSize rows, visiting rows in the
// order given by perm (nil keeps input order). The last batch may be short.
// The channel is closed when every row was sent or ctx is done.
func Batches(ctx context.Context, X [][]float64, y []float64, batchSize int, perm []int) <-chan Batch {
	if batchSize <= 0 {
		batchSize = len(X)
	}
	out := make(chan Batch)
	go func() {
		defer close(out)
		var b Batch
		for i := range X {
			idx := i
			if perm != nil {
				idx = perm[i]
			}
			b.X = append(b.X, X[idx])
			b.Y = append(b.Y, y[idx])
			if len(b.Y) == batchSize || i == len(X)-1 {
				select {
				case out <- b:
				case <-ctx.Done():
					return
				}
				b = Batch{}
			}
		}
	}()
	return out
}
