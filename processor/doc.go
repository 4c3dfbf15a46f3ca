// Package processor defines the transformation steps a pipeline is made of.
//
// A Processor is either a leaf (one atomic transformation) or a *Composite,
// an ordered main chain with an optional on-failure chain. Composites nest
// without limit, so per-step error handling is expressed as data:
//
//	root := processor.NewComposite(
//	    []processor.Processor{
//	        processor.NewComposite([]processor.Processor{parse}, []processor.Processor{tagFailure}),
//	        enrich,
//	    },
//	    nil,
//	)
//	err := root.Execute(ctx, doc)
//
// Decorate rebuilds a tree so every leaf invocation is appended to a Trace,
// which is what the simulate surface reports in verbose mode.
package processor
