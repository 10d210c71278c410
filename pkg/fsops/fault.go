package fsops

// FaultInjector lets tests force failures at the two points the engine
// must clean up after: the rename that publishes an atomic write, and the
// rename a move attempts before falling back to copy+remove. Production
// code uses NopInjector; there is no package-global switch.
type FaultInjector interface {
	// BeforePublish runs after the temp file is fully written, just
	// before the rename onto the destination. A non-nil error aborts the
	// write; the temp file must still be cleaned up by the caller.
	BeforePublish(src, dst string) error

	// BeforeRename runs before MovePath attempts os.Rename. A non-nil
	// error is treated exactly like a rename failure of that error.
	BeforeRename(src, dst string) error
}

// NopInjector is the production FaultInjector: it never fails.
type NopInjector struct{}

func (NopInjector) BeforePublish(src, dst string) error { return nil }
func (NopInjector) BeforeRename(src, dst string) error  { return nil }
