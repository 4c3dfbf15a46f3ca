// Package pipeline holds identified pipelines and the collaborators that
// produce them.
//
// A Pipeline is an id, a description and a root processor.Composite. Pipelines
// are built from Definitions with a Registry of processor factories, and are
// served to the execution service through the Store interface. MemoryStore is
// the in-process store; it also acts as the configuration source, notifying
// subscribers with the full set of configured ids whenever it changes.
//
// # Definitions
//
// Definitions are usually loaded from YAML. Each processor is a single-key
// map from its type to its options; "tag" and "on_failure" are recognized on
// every processor:
//
//	pipelines:
//	  - id: normalize
//	    description: tidy user documents
//	    processors:
//	      - lowercase: {field: user.email}
//	      - rename:
//	          field: name
//	          target_field: full_name
//	          tag: rename-name
//	          on_failure:
//	            - set: {field: rename_failed, value: true}
//	    on_failure:
//	      - script: {field: error, expression: "_ingest.on_failure_message"}
package pipeline
