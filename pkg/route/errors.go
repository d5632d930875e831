package route

// AssetReadError is returned when a static asset cannot be read.
type AssetReadError struct {
	Path string
	Err  error
}

func (e *AssetReadError) Error() string { return e.Err.Error() }
func (e *AssetReadError) Unwrap() error { return e.Err }

// ComposeError is returned when an HTML document cannot be composed.
type ComposeError struct {
	Path string
	Err  error
}

func (e *ComposeError) Error() string { return e.Err.Error() }
func (e *ComposeError) Unwrap() error { return e.Err }

// CompileError is returned when a module cannot be compiled.
type CompileError struct {
	Path string
	Err  error
}

func (e *CompileError) Error() string { return e.Err.Error() }
func (e *CompileError) Unwrap() error { return e.Err }

// DocumentReadError is returned when a saved drawing cannot be read.
type DocumentReadError struct {
	Path string
	Err  error
}

func (e *DocumentReadError) Error() string { return e.Err.Error() }
func (e *DocumentReadError) Unwrap() error { return e.Err }
