package reactive

// CombineLatest runs fn once every source is attached and again after each
// emission of any source. fn reads the current values directly from the
// holders it closes over. The returned function detaches from all sources.
//
//	stop := reactive.CombineLatest(func() {
//	    engine.Mount(app, page(devices.Value(), form.Value()))
//	}, devices, form)
func CombineLatest(fn func(), sources ...Source) (stop func()) {
	ready := false
	unsubs := make([]func(), 0, len(sources))
	for _, src := range sources {
		unsubs = append(unsubs, src.Observe(func() {
			if ready {
				fn()
			}
		}))
	}
	ready = true
	fn()

	return func() {
		for _, unsub := range unsubs {
			unsub()
		}
	}
}
