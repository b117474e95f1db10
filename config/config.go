package config

import (
	internal "github.com/wesleyorama2/tracehttp/internal/config"
)

type (
	// RequestFile is a request loaded from disk.
	RequestFile = internal.RequestFile
	// FileFormat is the encoding of a request file.
	FileFormat = internal.FileFormat
	// ValidationError is one problem found in a request file.
	ValidationError = internal.ValidationError
	// ValidationErrors is every problem found in a request file.
	ValidationErrors = internal.ValidationErrors
)

const (
	FormatJSON = internal.FormatJSON
	FormatYAML = internal.FormatYAML
	FormatTOML = internal.FormatTOML
)

var (
	LoadRequestFile     = internal.LoadRequestFile
	ParseRequestFile    = internal.ParseRequestFile
	ValidateRequestFile = internal.ValidateRequestFile
	ProcessEnvironment  = internal.ProcessEnvironment
	MergeEnvironments   = internal.MergeEnvironments
)
