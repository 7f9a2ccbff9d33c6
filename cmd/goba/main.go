// Command goba runs the emulator core: it loads a boot ROM and a
// cartridge image, wires the CPU, bus, and pixel engine together, and
// either drives them headlessly (dumping the first completed frame to
// disk) or opens an Ebiten window, optionally under the interactive
// monitor and a Lua scripting console.
package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"image/png"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"goba/internal/cartridge"
	"goba/internal/cpu"
	"goba/internal/ioregs"
	membus "goba/internal/membus"
	"goba/internal/membus/access"
	"goba/internal/memory"
	"goba/internal/monitor"
	"goba/internal/ppu"
	"goba/internal/present"
	"goba/internal/romfile"
	"goba/internal/scripting"
	"goba/util/dbg"
)

func main() {
	romPath := flag.String("rom", "", "path to the cartridge ROM image")
	biosPath := flag.String("bios", "bios.bin", "path to a GBA boot ROM image")
	skipBIOS := flag.Bool("skip-bios", false, "start execution directly at the cartridge entry point")
	useMonitor := flag.Bool("monitor", false, "start the interactive terminal debugger instead of running free")
	scriptPath := flag.String("script", "", "run a Lua script against the machine before starting")
	openWindow := flag.Bool("window", false, "open a live Ebiten viewer instead of dumping the first frame to disk")
	flag.Parse()

	if *romPath == "" {
		log.Fatal("-rom is required")
	}

	romData, biosData, err := loadImages(*romPath, *biosPath, *skipBIOS)
	if err != nil {
		log.Fatal(err)
	}

	m := newMachine(romData, biosData, *skipBIOS)

	if *scriptPath != "" {
		bp := scripting.NewBreakpoints()
		console := scripting.New(m.bus, bp)
		defer console.Close()
		if err := console.RunFile(*scriptPath); err != nil {
			log.Fatal(err)
		}
		m.breakpoints = bp
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		<-sig
		cancel()
	}()

	switch {
	case *useMonitor:
		if err := monitor.Run(m); err != nil {
			log.Fatal(err)
		}
	case *openWindow:
		if err := present.Run("goba", m); err != nil {
			log.Fatal(err)
		}
	default:
		runHeadless(ctx, m)
	}
}

// loadImages reads the BIOS and ROM files concurrently with errgroup,
// the only place in the emulator where concurrency touches the
// single-threaded emulation core: once loaded, the byte slices are
// handed to the core and never touched by another goroutine again.
func loadImages(romPath, biosPath string, skipBIOS bool) (rom, bios []byte, err error) {
	g := new(errgroup.Group)
	g.Go(func() error {
		data, err := romfile.LoadROM(romPath)
		if err != nil {
			return err
		}
		rom = data
		return nil
	})
	if !skipBIOS {
		if biosPath == "" {
			return nil, nil, fmt.Errorf("-bios is required unless -skip-bios is set")
		}
		g.Go(func() error {
			data, err := romfile.LoadBIOS(biosPath)
			if err != nil {
				return err
			}
			bios = data
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return rom, bios, nil
}

// machine bundles the wired-up core and satisfies both monitor.Machine
// and present.FrameSource so the same instance can run under any of the
// three presentation modes.
type machine struct {
	cpu         *cpu.CPU
	bus         *membus.Bus
	ppu         *ppu.PPU
	breakpoints *scripting.Breakpoints
}

func newMachine(romData, biosData []byte, skipBIOS bool) *machine {
	biosMem := memory.NewBIOS()
	if biosData != nil {
		biosMem.Load(biosData)
	}
	ewram := memory.NewEWRAM()
	iwram := memory.NewIWRAM()
	cart := cartridge.New(romData)
	io := ioregs.New()
	pixelEngine := ppu.New()

	bus := membus.New(biosMem, ewram, iwram, cart, io, pixelEngine)
	pixelEngine.AttachBus(bus)

	core := cpu.New(bus)
	bus.AttachCPU(core)
	core.Reset(skipBIOS)

	return &machine{cpu: core, bus: bus, ppu: pixelEngine}
}

func (m *machine) Step() bool {
	more := m.cpu.Step()
	if m.breakpoints != nil && m.breakpoints.Hit(m.cpu.PC()) {
		return false
	}
	return more
}

func (m *machine) PC() uint32       { return m.cpu.PC() }
func (m *machine) Cycles() uint64   { return m.cpu.Cycles() }
func (m *machine) Regs() *cpu.Registers { return m.cpu.Regs }

func (m *machine) ReadWord(addr uint32) uint32 {
	return m.bus.Read32(addr, access.Fast)
}
func (m *machine) ReadHalf(addr uint32) uint16 {
	return m.bus.Read16(addr, access.Fast)
}

func (m *machine) RunFrame() {
	for !m.ppu.FrameReady() {
		m.Step()
	}
	m.ppu.ConsumeFrame()
}

func (m *machine) Framebuffer() []uint32 { return m.ppu.Frame() }

// cyclesPerSecond is the ARM7TDMI's nominal clock (2^24 Hz, ~16.78 MHz):
// one quota's worth of emulated cycles corresponds to one second of real
// hardware time.
const cyclesPerSecond = 1 << 24

// runHeadless paces the core against a one-simulated-second cycle quota,
// sleeping off whatever real time is left once a quota is spent so the
// core doesn't run ahead of real hardware, saving the first completed
// frame to disk and logging an FPS figure once a second.
func runHeadless(ctx context.Context, m *machine) {
	frames := 0
	saved := false
	last := time.Now()
	quotaCycles := uint64(0)
	quotaStart := time.Now()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		before := m.cpu.Cycles()
		if !m.Step() {
			dbg.Printf("halted at pc=%08x (breakpoint or stop)\n", m.PC())
			return
		}
		quotaCycles += m.cpu.Cycles() - before

		if quotaCycles >= cyclesPerSecond {
			quotaCycles -= cyclesPerSecond
			if elapsed := time.Since(quotaStart); elapsed < time.Second {
				time.Sleep(time.Second - elapsed)
			}
			quotaStart = time.Now()
		}

		if m.ppu.FrameReady() {
			frames++
			if !saved {
				saveFrame(m.ppu.Frame(), "first_frame.png")
				saved = true
			}
			m.ppu.ConsumeFrame()
		}

		if time.Since(last) >= time.Second {
			dbg.Printf("fps=%d cycles=%d\n", frames, m.cpu.Cycles())
			frames = 0
			last = time.Now()
		}
	}
}

func saveFrame(fb []uint32, filename string) {
	bounds := present.SnapshotPNGBounds()
	img := image.NewRGBA(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			argb := fb[y*bounds.Dx()+x]
			i := img.PixOffset(x, y)
			img.Pix[i+0] = uint8(argb >> 16)
			img.Pix[i+1] = uint8(argb >> 8)
			img.Pix[i+2] = uint8(argb)
			img.Pix[i+3] = uint8(argb >> 24)
		}
	}
	file, err := os.Create(filename)
	if err != nil {
		log.Printf("saveFrame: %v", err)
		return
	}
	defer file.Close()
	if err := png.Encode(file, img); err != nil {
		log.Printf("saveFrame: %v", err)
		return
	}
	log.Printf("saved first frame to %s", filename)
}
