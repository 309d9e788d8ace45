package services

import "fmt"

// RunIsolated is the single error boundary wrapped around every extractor
// and enrichment call site. It converts panics into errors so one misbehaving
// source or detail page can never take down the pipeline; the caller records
// the error against the stage name and continues with the zero value.
func RunIsolated[T any](stage string, fn func() (T, error)) (result T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s: panic: %v", stage, r)
		}
	}()
	return fn()
}
