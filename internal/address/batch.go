package address

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// Direction selects the conversion applied by ConvertBatch.
type Direction string

const (
	// DirectionToEvm applies ToEvmAddress.
	DirectionToEvm Direction = "toEvm"
	// DirectionFromEvm applies FromEvmAddress.
	DirectionFromEvm Direction = "fromEvm"
	// DirectionConvert applies Convert.
	DirectionConvert Direction = "convert"
)

// DefaultBatchWorkers is used when ConvertBatch is given workers <= 0.
const DefaultBatchWorkers = 8

// ParseDirection accepts the RPC spelling (toEvm) and the CLI spelling
// (to-evm) of a direction.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), "-", "")) {
	case "toevm":
		return DirectionToEvm, nil
	case "fromevm":
		return DirectionFromEvm, nil
	case "convert":
		return DirectionConvert, nil
	default:
		return "", fmt.Errorf("unknown direction %q: want toEvm, fromEvm or convert", s)
	}
}

// Func returns the conversion function for d.
func (d Direction) Func() (func(string) (string, error), error) {
	switch d {
	case DirectionToEvm:
		return ToEvmAddress, nil
	case DirectionFromEvm:
		return FromEvmAddress, nil
	case DirectionConvert:
		return Convert, nil
	default:
		return nil, fmt.Errorf("unknown direction %q", string(d))
	}
}

// Result is the outcome of converting one batch input.
type Result struct {
	Input  string
	Output string
	Err    error
}

// ConvertBatch converts inputs with a pool of workers and returns results in
// input order.
//
// Once ctx is done no further inputs are converted; their results carry
// ctx.Err().
func ConvertBatch(ctx context.Context, d Direction, inputs []string, workers int) ([]Result, error) {
	convert, err := d.Func()
	if err != nil {
		return nil, err
	}

	results := make([]Result, len(inputs))
	if len(inputs) == 0 {
		return results, nil
	}

	if workers <= 0 {
		workers = DefaultBatchWorkers
	}
	if workers > len(inputs) {
		workers = len(inputs)
	}

	taskCh := make(chan int)
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range taskCh {
				out, err := convert(inputs[idx])
				results[idx] = Result{Input: inputs[idx], Output: out, Err: err}
			}
		}()
	}

	next := 0
feed:
	for ; next < len(inputs); next++ {
		if ctx.Err() != nil {
			break
		}
		select {
		case <-ctx.Done():
			break feed
		case taskCh <- next:
		}
	}
	close(taskCh)
	wg.Wait()

	for i := next; i < len(inputs); i++ {
		results[i] = Result{Input: inputs[i], Err: ctx.Err()}
	}

	return results, nil
}
