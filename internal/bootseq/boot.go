package bootseq

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/tilixi/tilixi/internal/bus"
	"github.com/tilixi/tilixi/internal/events"
	"github.com/tilixi/tilixi/internal/kernel"
	"github.com/tilixi/tilixi/internal/modes"
	"github.com/tilixi/tilixi/internal/shell"
	"github.com/tilixi/tilixi/internal/shell/builtins"
	"github.com/tilixi/tilixi/internal/sysconfig"
	"github.com/tilixi/tilixi/internal/termui"
	"github.com/tilixi/tilixi/internal/vfsfs"
	"github.com/tilixi/tilixi/internal/vfsfs/memfs"
	"github.com/tilixi/tilixi/internal/vfsfs/sdfs"
)

const (
	screenWidth  = 1024
	screenHeight = 600
)

// Boot holds every subsystem a running core is built from. Callers
// drive it by feeding keyboard events to PushKey/PumpEvents; the
// scheduler is advanced by calling Tick (cmd/tilixi calls it after each
// key or input line; tests call it directly).
type Boot struct {
	Log *logrus.Entry

	Bus   *bus.Arbiter
	Vfs   *vfsfs.Vfs
	Table *kernel.Table
	Sched *kernel.Scheduler

	Queue   *events.Queue
	Hotkeys *events.HotkeyTable
	WM      *termui.WindowManager

	Registry *shell.Registry
	Config   *sysconfig.Loader

	bootTime time.Time
}

// Params configures one Boot instance.
type Params struct {
	// CardDir is the host directory standing in for the SD card root.
	// It must already exist.
	CardDir string
	// Pins is the bus peripheral-select implementation. If nil,
	// HostPins is used.
	Pins bus.Pins
	Log  *logrus.Entry
}

// New constructs a Boot instance but does not yet bring it up — call
// Run to execute the boot sequence and open the first terminal.
func New(p Params) (*Boot, error) {
	if p.Log == nil {
		p.Log = logrus.NewEntry(logrus.StandardLogger())
	}
	if p.Pins == nil {
		p.Pins = HostPins{}
	}

	b := &Boot{
		Log:      p.Log,
		bootTime: bootTimeNow(),
	}
	b.Bus = bus.New(p.Pins, p.Log)
	b.Vfs = vfsfs.New(p.Log)
	b.Table = kernel.NewTable(p.Log)
	b.Sched = kernel.NewScheduler(b.Table, nil, p.Log)
	b.Queue = events.NewQueue()
	b.Hotkeys = events.NewHotkeyTable()
	b.Hotkeys.RegisterDefaults()
	b.WM = termui.NewWindowManager(screenWidth, screenHeight)
	b.Registry = shell.NewRegistry()
	builtins.RegisterAll(b.Registry)
	b.Config = sysconfig.NewLoader(b.Vfs)

	sd := sdfs.New(b.Bus, p.CardDir)
	root, ops := sd.Root()
	if err := b.Vfs.Mount("/", root, ops, nil); err != nil {
		return nil, fmt.Errorf("bootseq: mount SD root: %w", err)
	}

	return b, nil
}

// bootTimeNow exists so the rest of this package never calls time.Now
// directly, matching the single call site convention the teacher's
// loader initialization uses for its own start-time stamping.
func bootTimeNow() time.Time { return time.Now() }

// Prepare runs every boot step up to, but not including, opening the
// first terminal: fsck/repair the SD filesystem, mount the synthetic
// /proc, reload configuration, and start the registered system
// processes. Callers that need a terminal with no login/first-boot
// prompt attached (a headless script runner) use Prepare directly and
// open their own terminal with WM.New; Run is Prepare plus the normal
// interactive terminal.
func (b *Boot) Prepare() error {
	if err := b.step("Init SD filesystem", func() error { return RepairFilesystem(b.Vfs, b.Log) }); err != nil {
		return err
	}
	if err := b.step("Mount /proc", b.mountProc); err != nil {
		return err
	}
	if err := b.step("Reload config", func() error { return b.Config.Reload() }); err != nil {
		return err
	}
	if err := b.step("Init OS subsystems", b.startSystemProcesses); err != nil {
		return err
	}
	return nil
}

// Run executes the firmware's boot sequence and then opens the first
// terminal, handing it to first-boot setup or the login prompt,
// whichever applies.
func (b *Boot) Run() error {
	if err := b.Prepare(); err != nil {
		return err
	}

	idx, ok := b.WM.New()
	if !ok {
		return fmt.Errorf("bootseq: failed to open first terminal")
	}
	term := b.WM.At(idx)
	term.WriteLine("TILIXI booting...")

	if !modes.StartFirstBootIfNeeded(term, b.Vfs) {
		modes.StartLogin(term, b.Vfs)
	}
	if term.Mode == nil {
		term.WriteString("$ ")
	}

	b.Log.Info("bootseq: boot complete")
	return nil
}

// Tick advances the scheduler by one quantum. Callers drive this from
// whatever represents time in their environment (after each key or
// input line in cmd/tilixi, direct calls in a test).
func (b *Boot) Tick() { b.Sched.Tick() }

func (b *Boot) step(name string, fn func() error) error {
	if err := fn(); err != nil {
		b.Log.WithError(err).WithField("step", name).Error("bootseq: boot step failed")
		return fmt.Errorf("%s: %w", name, err)
	}
	b.Log.WithField("step", name).Debug("bootseq: boot step ok")
	return nil
}

func (b *Boot) mountProc() error {
	_, node := memfs.New(procRoot(b.bootTime, b.Table))
	return b.Vfs.Mount("/proc", node, node.Ops, nil)
}

// systemIdle is the one boot process every boot registers: a
// background placeholder with no dependencies, matching boot_sequence.c's
// system_idle_task. This scheduler calls an entry's body once per
// quantum rather than giving it its own call stack to loop in, so the
// placeholder simply returns — the repeated Tick() calls from whatever
// drives the scheduler are this process's "while(1)". It exists to
// give /proc/sched and /proc/tasks a non-empty process table even
// before the user runs anything.
func systemIdle(args interface{}) {}

func (b *Boot) startSystemProcesses() error {
	entries := []kernel.BootEntry{
		{Name: "system_idle", Entry: systemIdle, Priority: kernel.Low},
	}
	if failed := kernel.StartAll(b.Table, b.Log, entries); len(failed) > 0 {
		return fmt.Errorf("failed to start: %v", failed)
	}
	return nil
}
