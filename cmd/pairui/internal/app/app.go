// Package app wires the runtime services into the matter2mqtt pairing UI.
//
// App owns every process-scoped service: the loop, the document, the event
// bus, the mount engine, the dialog manager and the notification center. It
// also owns the state holders the pages render from. Work that outlives the
// component that started it (loading devices, pairing, unpairing) runs under
// the app's own context and reports back through the loop, so a handler may
// re-render or close its own container without cancelling that work.
package app

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/matter2mqtt/pairui/pkg/api"
	"github.com/matter2mqtt/pairui/pkg/dialog"
	"github.com/matter2mqtt/pairui/pkg/dom"
	"github.com/matter2mqtt/pairui/pkg/errors"
	"github.com/matter2mqtt/pairui/pkg/events"
	"github.com/matter2mqtt/pairui/pkg/metrics"
	"github.com/matter2mqtt/pairui/pkg/mount"
	"github.com/matter2mqtt/pairui/pkg/notify"
	"github.com/matter2mqtt/pairui/pkg/platform"
	"github.com/matter2mqtt/pairui/pkg/reactive"
)

// Shell is the document the app renders into.
const Shell = `<!DOCTYPE html><html><head><meta charset="utf-8"><title>matter2mqtt</title></head>` +
	`<body><div id="header-container"></div><div id="notifications-container"></div>` +
	`<main id="app"></main></body></html>`

// DefaultRedirectDelay is how long the pair page waits after a successful
// pairing before returning home.
const DefaultRedirectDelay = 2 * time.Second

// API is the subset of the pairing service the app calls.
type API interface {
	Devices(ctx context.Context) ([]api.Device, error)
	Pair(ctx context.Context, req api.PairRequest) (*api.PairResponse, error)
	Unpair(ctx context.Context, req api.UnpairRequest) (*api.Response, error)
}

// Options configures New. API is required; everything else has a default.
type Options struct {
	API           API
	Loop          *platform.Loop
	Clock         platform.Clock
	Logger        *slog.Logger
	Metrics       *metrics.Metrics
	NotifyDelay   time.Duration
	RedirectDelay time.Duration
	Page          Page
}

// App is the running pairing UI.
type App struct {
	api    API
	loop   *platform.Loop
	clock  platform.Clock
	logger *slog.Logger

	doc     *dom.Document
	bus     *events.Bus
	engine  *mount.Engine
	dialogs *dialog.Manager
	notices *notify.Center
	toasts  *notify.Renderer

	header        *dom.Element
	notifications *dom.Element
	main          *dom.Element

	page    *reactive.Holder[Page]
	devices *reactive.Holder[[]api.Device]
	form    *reactive.Holder[FormState]
	draft   map[string]string

	redirectDelay time.Duration
	redirect      platform.Timer

	ctx    context.Context
	cancel context.CancelFunc
	work   sync.WaitGroup
	stops  []func()
	closed bool
}

// New builds the app and its services. Nothing is rendered until Start.
func New(opts Options) (*App, error) {
	if opts.API == nil {
		return nil, fmt.Errorf("app: API is required")
	}
	if opts.Loop == nil {
		opts.Loop = platform.NewLoop()
	}
	if opts.Clock == nil {
		opts.Clock = platform.SystemClock{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	if opts.NotifyDelay <= 0 {
		opts.NotifyDelay = notify.DefaultDelay
	}
	if opts.RedirectDelay <= 0 {
		opts.RedirectDelay = DefaultRedirectDelay
	}
	switch opts.Page {
	case "":
		opts.Page = PageHome
	case PageHome, PagePair:
	default:
		return nil, fmt.Errorf("app: unknown page %q", opts.Page)
	}

	doc, err := dom.Parse(Shell)
	if err != nil {
		return nil, fmt.Errorf("app: parse shell: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	a := &App{
		api:           opts.API,
		loop:          opts.Loop,
		clock:         opts.Clock,
		logger:        opts.Logger,
		doc:           doc,
		page:          reactive.NewHolder(opts.Page),
		devices:       reactive.NewHolder([]api.Device{}),
		form:          reactive.NewHolder(FormState{}),
		draft:         make(map[string]string),
		redirectDelay: opts.RedirectDelay,
		ctx:           ctx,
		cancel:        cancel,
	}

	for id, dst := range map[string]**dom.Element{
		"header-container":        &a.header,
		"notifications-container": &a.notifications,
		"app":                     &a.main,
	} {
		el, err := doc.SelectByID(id)
		if err != nil {
			cancel()
			return nil, err
		}
		*dst = el
	}

	a.bus = events.NewBus(doc.Root(),
		events.WithLogger(opts.Logger),
		events.WithMetrics(opts.Metrics))
	a.bus.Warm()
	a.engine = mount.New(a.bus,
		mount.WithContext(ctx),
		mount.WithLogger(opts.Logger),
		mount.WithMetrics(opts.Metrics))
	a.dialogs = dialog.New(doc, a.engine, a.bus,
		dialog.WithLogger(opts.Logger),
		dialog.WithMetrics(opts.Metrics))
	a.notices = notify.NewCenter(reactive.NewHolder([]notify.Notification(nil)),
		notify.WithClock(opts.Clock),
		notify.WithLoop(opts.Loop),
		notify.WithDelay(opts.NotifyDelay),
		notify.WithLogger(opts.Logger),
		notify.WithMetrics(opts.Metrics))
	a.toasts = notify.NewRenderer(a.notices)
	return a, nil
}

// Start installs the data flow and the UI flow, then loads the device list.
// It must run on the loop goroutine.
func (a *App) Start() {
	a.dialogs.Init()

	a.stops = append(a.stops,
		a.devices.Subscribe(a.suggestNodeID),
		reactive.CombineLatest(func() {
			a.engine.Mount(a.header, headerComponent(a, a.page.Value()))
		}, a.page),
		reactive.CombineLatest(func() {
			a.engine.Mount(a.notifications, a.toasts.Component(a.notices.List().Value()))
		}, a.notices.List()),
		a.devices.Observe(a.remountOn(PageHome)),
		a.form.Observe(a.remountOn(PagePair)),
		reactive.CombineLatest(a.remount, a.page),
	)

	a.LoadDevices()
}

// Close cancels outstanding work, waits for it, and tears the UI down. It
// must run on the loop goroutine.
func (a *App) Close() {
	if a.closed {
		return
	}
	a.closed = true
	a.cancel()
	if a.redirect != nil {
		a.redirect.Stop()
	}
	a.work.Wait()
	for _, stop := range a.stops {
		stop()
	}
	a.stops = nil
	a.dialogs.Stop()
	a.notices.Stop()
	a.engine.Close()
	a.loop.Drain()
}

// Wait blocks until background calls have finished. Their results may still
// be queued on the loop.
func (a *App) Wait() {
	a.work.Wait()
}

// Flush waits for background calls and drains the loop until both are idle.
// It must run on the loop goroutine.
func (a *App) Flush() {
	for {
		a.work.Wait()
		a.engine.Wait()
		if a.loop.Drain() == 0 {
			return
		}
	}
}

// Document returns the rendered document.
func (a *App) Document() *dom.Document { return a.doc }

// Loop returns the UI loop.
func (a *App) Loop() *platform.Loop { return a.loop }

// Dialogs returns the dialog manager.
func (a *App) Dialogs() *dialog.Manager { return a.dialogs }

// Notices returns the notification center.
func (a *App) Notices() *notify.Center { return a.notices }

// Page returns the page holder.
func (a *App) Page() *reactive.Holder[Page] { return a.page }

// Devices returns the device list holder.
func (a *App) Devices() *reactive.Holder[[]api.Device] { return a.devices }

// Form returns the pair form holder.
func (a *App) Form() *reactive.Holder[FormState] { return a.form }

// Navigate switches the rendered page.
func (a *App) Navigate(p Page) {
	if p != PageHome && p != PagePair {
		a.logger.Warn("app.navigate.unknown", "page", p)
		return
	}
	if a.page.Value() == p {
		return
	}
	a.logger.Debug("app.navigate", "page", p)
	a.page.Set(p)
}

// LoadDevices fetches the device list in the background. A failure is
// reported as a notification and leaves an empty list.
func (a *App) LoadDevices() {
	a.background("devices", func(ctx context.Context) func() {
		devices, err := a.api.Devices(ctx)
		return func() {
			if err != nil {
				a.notices.ReportTransport("Loading devices", err)
				a.devices.Set([]api.Device{})
				return
			}
			a.logger.Info("app.devices.loaded", "count", len(devices))
			a.devices.Set(devices)
		}
	})
}

// background runs call on its own goroutine under the app context and
// dispatches the callback it returns to the loop. Results of calls that
// were cancelled by Close are dropped.
func (a *App) background(op string, call func(ctx context.Context) func()) {
	if a.closed {
		return
	}
	a.work.Add(1)
	go func() {
		defer a.work.Done()
		defer errors.Recover("app." + op)
		apply := call(a.ctx)
		if a.ctx.Err() != nil {
			a.logger.Debug("app.call.dropped", "op", op)
			return
		}
		if !a.loop.Dispatch(apply) {
			a.logger.Warn("app.call.undelivered", "op", op)
		}
	}()
}

func (a *App) remount() {
	a.engine.Mount(a.main, a.pageComponent())
}

// remountOn re-renders main only while p is showing, so a device list that
// lands while the pair form is open leaves the form alone.
func (a *App) remountOn(p Page) func() {
	return func() {
		if a.page.Value() == p {
			a.remount()
		}
	}
}

func (a *App) pageComponent() mount.Component {
	switch a.page.Value() {
	case PagePair:
		return pairPage(a, a.form.Value())
	default:
		return homePage(a, a.devices.Value())
	}
}

// failureMessage extracts the user-facing text of a failed call.
func failureMessage(err error) string {
	if err == nil {
		return "Unknown error"
	}
	var te *errors.TransportError
	if stderrors.As(err, &te) && te.Message != "" {
		return te.Message
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return "Unknown error"
}
