// Package services carries the error taxonomy and context annotations shared
// by the pipeline stages. Errors are tagged with sentinel markers so the
// workflow can decide whether a failure dooms the run or only the clip.
package services
