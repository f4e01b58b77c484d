// Package orchestration runs fan-out strategies and analyses their results.
// It decouples the runners from presentation via the ProgressReporter,
// ResultPresenter and ErrorHandler interfaces.
package orchestration
