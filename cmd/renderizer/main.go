// renderizer - CPU software rasterizer for the terminal
// View textured OBJ and GLB models rendered entirely on the CPU.
//
// Controls:
//
//	Mouse drag  - Look around (yaw/pitch)
//	Scroll      - Move forward/back
//	W/S         - Move forward/back
//	A/D         - Strafe left/right
//	Q/E         - Move up/down
//	Space       - Random model spin
//	R           - Reset view and model
//	G           - Toggle reference grid
//	X           - Toggle wireframe
//	O           - Toggle vertex dots
//	N           - Toggle face normals
//	F           - Toggle filled triangles
//	T           - Toggle textured triangles
//	B           - Toggle back-face culling
//	C           - Toggle FPS cap
//	+/-         - Adjust FPS cap
//	L           - Light positioning mode (move mouse, click to set)
//	P           - Save a screenshot (WebP)
//	?           - Toggle HUD overlay
//	Esc         - Quit (or cancel light mode)
package main

import (
	"context"
	"flag"
	"fmt"
	"math"
	"math/rand"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/harmonica"
	uv "github.com/charmbracelet/ultraviolet"

	"github.com/hcosta/renderizer/pkg/math3d"
	"github.com/hcosta/renderizer/pkg/models"
	"github.com/hcosta/renderizer/pkg/render"
	"github.com/hcosta/renderizer/pkg/scene"
)

var (
	texturePath = flag.String("texture", "", "Path to texture image (PNG/JPG/TGA/BMP)")
	configPath  = flag.String("config", "", "Path to scene config JSON")
	targetFPS   = flag.Int("fps", 0, "FPS cap (overrides config)")
	bgColor     = flag.String("bg", "30,30,40", "Background color (R,G,B)")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "renderizer - CPU software rasterizer for the terminal\n\n")
		fmt.Fprintf(os.Stderr, "Usage: renderizer [options] <model.obj|model.glb>\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nControls:\n")
		fmt.Fprintf(os.Stderr, "  Mouse drag  - Look around\n")
		fmt.Fprintf(os.Stderr, "  W/A/S/D     - Move, Q/E up/down\n")
		fmt.Fprintf(os.Stderr, "  G/X/O/N/F/T - Toggle grid, wireframe, dots, normals, fill, texture\n")
		fmt.Fprintf(os.Stderr, "  B           - Toggle back-face culling\n")
		fmt.Fprintf(os.Stderr, "  C, +/-      - FPS cap toggle and adjust\n")
		fmt.Fprintf(os.Stderr, "  L           - Position light (mouse to aim, click to set)\n")
		fmt.Fprintf(os.Stderr, "  P           - Screenshot\n")
		fmt.Fprintf(os.Stderr, "  Esc         - Quit\n")
	}
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(1)
	}

	if err := run(flag.Arg(0)); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// SpinAxis tracks one model-rotation axis with spring velocity decay.
type SpinAxis struct {
	Position  float64
	Velocity  float64
	velSpring harmonica.Spring
	velAccel  float64
}

// NewSpinAxis creates an axis with a critically damped harmonica spring.
func NewSpinAxis(fps int) SpinAxis {
	return SpinAxis{
		velSpring: harmonica.NewSpring(harmonica.FPS(fps), 4.0, 1.0),
	}
}

// Update advances the position and decays the velocity toward zero.
func (a *SpinAxis) Update() {
	a.Position += a.Velocity
	a.Velocity, a.velAccel = a.velSpring.Update(a.Velocity, a.velAccel, 0)
}

// SpinState holds the model spin with spring physics.
type SpinState struct {
	X, Y, Z SpinAxis
	fps     int
}

func NewSpinState(fps int) *SpinState {
	return &SpinState{
		X:   NewSpinAxis(fps),
		Y:   NewSpinAxis(fps),
		Z:   NewSpinAxis(fps),
		fps: fps,
	}
}

func (s *SpinState) Update() {
	s.X.Update()
	s.Y.Update()
	s.Z.Update()
}

func (s *SpinState) ApplyImpulse(x, y, z float64) {
	s.X.Velocity += x
	s.Y.Velocity += y
	s.Z.Velocity += z
}

func (s *SpinState) Reset() {
	s.X = NewSpinAxis(s.fps)
	s.Y = NewSpinAxis(s.fps)
	s.Z = NewSpinAxis(s.fps)
}

// Options is the UI property bag. Input events toggle its fields; the
// pipeline reads a snapshot of it at the start of each frame and writes
// nothing back.
type Options struct {
	DrawGrid              bool
	DrawWireframe         bool
	DrawWireframeDots     bool
	DrawTriangleNormals   bool
	DrawFilledTriangles   bool
	DrawTexturedTriangles bool
	EnableBackfaceCulling bool

	EnableCap bool
	FPSCap    int

	ModelScale       math3d.Vec3
	ModelTranslation math3d.Vec3

	LightDir     math3d.Vec3
	LightMode    bool
	PendingLight math3d.Vec3

	FOVDegrees float64
	ZNear      float64
	ZFar       float64

	ShowHUD bool
}

// NewOptions builds the property bag from the scene config.
func NewOptions(cfg scene.Config) *Options {
	return &Options{
		DrawFilledTriangles:   true,
		DrawTexturedTriangles: true,
		EnableBackfaceCulling: true,
		EnableCap:             cfg.EnableCap,
		FPSCap:                cfg.FPSCap,
		ModelScale:            math3d.V3(cfg.ModelScale[0], cfg.ModelScale[1], cfg.ModelScale[2]),
		ModelTranslation:      math3d.V3(cfg.ModelTranslation[0], cfg.ModelTranslation[1], cfg.ModelTranslation[2]),
		LightDir:              math3d.V3(cfg.LightDirection[0], cfg.LightDirection[1], cfg.LightDirection[2]).Normalize(),
		FOVDegrees:            cfg.FOVDegrees,
		ZNear:                 cfg.ZNear,
		ZFar:                  cfg.ZFar,
		ShowHUD:               true,
	}
}

// Params snapshots the bag into the pipeline's per-frame parameters.
func (o *Options) Params(spin *SpinState, baseRotation math3d.Vec3) render.RenderParams {
	lightDir := o.LightDir
	if o.LightMode {
		lightDir = o.PendingLight
	}

	return render.RenderParams{
		DrawGrid:              o.DrawGrid,
		DrawWireframe:         o.DrawWireframe,
		DrawWireframeDots:     o.DrawWireframeDots,
		DrawTriangleNormals:   o.DrawTriangleNormals,
		DrawFilledTriangles:   o.DrawFilledTriangles,
		DrawTexturedTriangles: o.DrawTexturedTriangles,
		EnableBackfaceCulling: o.EnableBackfaceCulling,
		ModelScale:            o.ModelScale,
		ModelRotation: baseRotation.Add(math3d.V3(
			spin.X.Position, spin.Y.Position, spin.Z.Position)),
		ModelTranslation: o.ModelTranslation,
		FOVDegrees:       o.FOVDegrees,
		ZNear:            o.ZNear,
		ZFar:             o.ZFar,
		Light:            render.NewLight(lightDir),
		BaseColor:        render.ColorWhite,
	}
}

// ScreenToLightDir maps a screen position onto a hemisphere above the model
// and returns it as a light ray direction.
func ScreenToLightDir(screenX, screenY, width, height int) math3d.Vec3 {
	nx := (float64(screenX)/float64(width))*2 - 1
	ny := (float64(screenY)/float64(height))*2 - 1

	lenSq := nx*nx + ny*ny
	if lenSq > 1 {
		l := math.Sqrt(lenSq)
		nx /= l
		ny /= l
		lenSq = 1
	}
	nz := math.Sqrt(1 - lenSq)

	return math3d.V3(nx, -ny, nz).Normalize()
}

// HUD renders the overlay with model info and toggle states.
type HUD struct {
	filename  string
	polyCount int
	fps       float64
	fpsFrames int
	fpsTime   time.Time
}

func NewHUD(filename string, polyCount int) *HUD {
	return &HUD{
		filename:  filename,
		polyCount: polyCount,
		fpsTime:   time.Now(),
	}
}

// UpdateFPS updates the FPS counter (call once per frame).
func (h *HUD) UpdateFPS() {
	h.fpsFrames++
	elapsed := time.Since(h.fpsTime)
	if elapsed >= time.Second {
		h.fps = float64(h.fpsFrames) / elapsed.Seconds()
		h.fpsFrames = 0
		h.fpsTime = time.Now()
	}
}

// Render draws the HUD directly to the terminal.
func (h *HUD) Render(width, height int, opts *Options) {
	const (
		reset     = "\x1b[0m"
		bold      = "\x1b[1m"
		dim       = "\x1b[2m"
		bgBlack   = "\x1b[40m"
		fgWhite   = "\x1b[97m"
		fgGreen   = "\x1b[92m"
		fgYellow  = "\x1b[93m"
		fgCyan    = "\x1b[96m"
		clearLine = "\x1b[2K"
	)

	moveTo := func(row, col int) string {
		return fmt.Sprintf("\x1b[%d;%dH", row, col)
	}

	// Always clear the HUD rows so toggling off works.
	fmt.Print(moveTo(1, 1) + clearLine)
	fmt.Print(moveTo(height, 1) + clearLine)

	if opts.LightMode {
		msg := fmt.Sprintf("%s%s%s ◉ LIGHT MODE - Move mouse to position, click to set, Esc to cancel %s",
			bgBlack, bold, fgYellow, reset)
		col := max((width-60)/2, 1)
		fmt.Print(moveTo(height, col) + msg)
		return
	}

	if !opts.ShowHUD {
		return
	}

	fmt.Printf("%s%s%s %.0f FPS %s", moveTo(1, 1), bgBlack, fgGreen, h.fps, reset)

	titleCol := max((width-len(h.filename)-2)/2, 1)
	fmt.Printf("%s%s%s%s %s %s", moveTo(1, titleCol), bold, bgBlack, fgWhite, h.filename, reset)

	polyCol := max(width-14, 1)
	fmt.Printf("%s%s%s%s %d tris %s", moveTo(1, polyCol), bgBlack, fgCyan, bold, h.polyCount, reset)

	check := func(on bool) string {
		if on {
			return "[✓]"
		}
		return "[ ]"
	}
	modeStr := fmt.Sprintf("%s%s %s Tex  %s Fill  %s Wire  %s Cull  %s Grid %s",
		bgBlack, fgWhite,
		check(opts.DrawTexturedTriangles), check(opts.DrawFilledTriangles),
		check(opts.DrawWireframe), check(opts.EnableBackfaceCulling),
		check(opts.DrawGrid), reset)
	fmt.Print(moveTo(height, 1) + modeStr)

	hint := fmt.Sprintf("%s%s%s L: light  P: shot %s", bgBlack, dim, fgYellow, reset)
	hintCol := max(width-20, 1)
	fmt.Print(moveTo(height, hintCol) + hint)
}

func run(modelPath string) error {
	var bgR, bgG, bgB uint8 = 30, 30, 40
	fmt.Sscanf(*bgColor, "%d,%d,%d", &bgR, &bgG, &bgB)

	// Scene configuration: defaults, file, then flag overrides.
	cfg := scene.Default()
	if *configPath != "" {
		var err error
		cfg, err = scene.Load(*configPath)
		if err != nil {
			return err
		}
	}
	if *targetFPS > 0 {
		cfg.FPSCap = *targetFPS
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	// Load texture if specified.
	var texture *render.Texture
	if *texturePath != "" {
		cfg.TexturePath = *texturePath
	}
	if cfg.TexturePath != "" {
		var err error
		texture, err = render.LoadTexture(cfg.TexturePath)
		if err != nil {
			return fmt.Errorf("load texture: %w", err)
		}
	}

	// Load model: the config may pin one, otherwise the positional argument.
	if cfg.ModelPath != "" {
		modelPath = cfg.ModelPath
	}
	var mesh *models.Mesh
	switch ext := strings.ToLower(filepath.Ext(modelPath)); ext {
	case ".glb", ".gltf":
		m, embeddedImg, err := models.LoadGLBWithTexture(modelPath)
		if err != nil {
			return fmt.Errorf("load model: %w", err)
		}
		mesh = m
		if texture == nil && embeddedImg != nil {
			texture = render.TextureFromImage(embeddedImg)
		}
	case ".obj":
		m, err := models.LoadOBJ(modelPath)
		if err != nil {
			return fmt.Errorf("load model: %w", err)
		}
		mesh = m
	default:
		return fmt.Errorf("unsupported format: %s (use .obj or .glb)", ext)
	}

	// Fit any model into the default scene.
	mesh.NormalizeSize(2)

	// Fallback texture if none.
	if texture == nil {
		texture = render.NewCheckerTexture(64, 64, 8,
			render.RGB(200, 200, 200), render.RGB(100, 100, 100))
	}

	// Create terminal.
	term := uv.DefaultTerminal()

	width, height, err := term.GetSize()
	if err != nil {
		return fmt.Errorf("get terminal size: %w", err)
	}
	if width <= 0 || height <= 0 {
		return fmt.Errorf("invalid terminal size %dx%d", width, height)
	}

	if err := term.Start(); err != nil {
		return fmt.Errorf("start terminal: %w", err)
	}

	term.EnterAltScreen()
	term.HideCursor()
	term.Resize(width, height)

	// Enable mouse tracking.
	fmt.Fprint(os.Stdout, "\x1b[?1003h") // any-event mouse tracking
	fmt.Fprint(os.Stdout, "\x1b[?1006h") // SGR extended mouse mode

	// Renderer setup.
	presenter := render.NewPresenter(term, width, height)
	fbWidth, fbHeight := presenter.FramebufferSize()
	fb := render.NewFramebuffer(fbWidth, fbHeight)
	depth := render.NewDepthBuffer(fbWidth, fbHeight)

	camera := render.NewCamera()
	camera.SetPosition(math3d.V3(cfg.CameraPosition[0], cfg.CameraPosition[1], cfg.CameraPosition[2]))
	camera.SetRotation(cfg.CameraYawPitch[0], cfg.CameraYawPitch[1])

	pipeline := render.NewPipeline(camera, fb, depth)

	opts := NewOptions(cfg)
	baseRotation := math3d.V3(cfg.ModelRotation[0], cfg.ModelRotation[1], cfg.ModelRotation[2])
	spin := NewSpinState(opts.FPSCap)
	hud := NewHUD(filepath.Base(modelPath), mesh.FaceCount())

	// Context for clean shutdown.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	// Held-key movement state (key release events are unreliable, so inputs
	// decay each frame).
	move := struct{ forward, right, up float64 }{}
	const moveSpeed = 5.0
	const mouseSensitivity = 0.03

	var mouseDown bool
	var lastMouseX, lastMouseY int
	shotCounter := 0

	// Event handler.
	go func() {
		for ev := range term.Events() {
			switch ev := ev.(type) {
			case uv.WindowSizeEvent:
				width, height = ev.Width, ev.Height
				term.Erase()
				term.Resize(width, height)
				presenter = render.NewPresenter(term, width, height)
				fbWidth, fbHeight = presenter.FramebufferSize()
				fb = render.NewFramebuffer(fbWidth, fbHeight)
				depth = render.NewDepthBuffer(fbWidth, fbHeight)
				pipeline = render.NewPipeline(camera, fb, depth)

			case uv.KeyPressEvent:
				switch {
				case ev.MatchString("escape"):
					if opts.LightMode {
						opts.LightMode = false
					} else {
						cancel()
						return
					}
				case ev.MatchString("ctrl+c"):
					cancel()
					return
				case ev.MatchString("w", "up"):
					move.forward = moveSpeed
				case ev.MatchString("s", "down"):
					move.forward = -moveSpeed
				case ev.MatchString("a", "left"):
					move.right = -moveSpeed
				case ev.MatchString("d", "right"):
					move.right = moveSpeed
				case ev.MatchString("q"):
					move.up = moveSpeed
				case ev.MatchString("e"):
					move.up = -moveSpeed
				case ev.MatchString("space"):
					spin.ApplyImpulse(
						(rand.Float64()-0.5)*1.5,
						(rand.Float64()-0.5)*1.5,
						(rand.Float64()-0.5)*1.5,
					)
				case ev.MatchString("r"):
					spin.Reset()
					camera.SetPosition(math3d.V3(cfg.CameraPosition[0], cfg.CameraPosition[1], cfg.CameraPosition[2]))
					camera.SetRotation(cfg.CameraYawPitch[0], cfg.CameraYawPitch[1])
				case ev.MatchString("g"):
					opts.DrawGrid = !opts.DrawGrid
				case ev.MatchString("x"):
					opts.DrawWireframe = !opts.DrawWireframe
				case ev.MatchString("o"):
					opts.DrawWireframeDots = !opts.DrawWireframeDots
				case ev.MatchString("n"):
					opts.DrawTriangleNormals = !opts.DrawTriangleNormals
				case ev.MatchString("f"):
					opts.DrawFilledTriangles = !opts.DrawFilledTriangles
				case ev.MatchString("t"):
					opts.DrawTexturedTriangles = !opts.DrawTexturedTriangles
				case ev.MatchString("b"):
					opts.EnableBackfaceCulling = !opts.EnableBackfaceCulling
				case ev.MatchString("c"):
					opts.EnableCap = !opts.EnableCap
				case ev.MatchString("+", "="):
					opts.FPSCap = min(opts.FPSCap+5, 240)
				case ev.MatchString("-", "_"):
					opts.FPSCap = max(opts.FPSCap-5, 5)
				case ev.MatchString("l"):
					opts.LightMode = true
					opts.PendingLight = opts.LightDir
				case ev.MatchString("p"):
					shotCounter++
					_ = fb.Screenshot(fmt.Sprintf("renderizer-%03d.webp", shotCounter))
				case ev.MatchString("?"), ev.MatchString("shift+/"):
					opts.ShowHUD = !opts.ShowHUD
				}

			case uv.KeyReleaseEvent:
				switch {
				case ev.MatchString("w"), ev.MatchString("up"), ev.MatchString("s"), ev.MatchString("down"):
					move.forward = 0
				case ev.MatchString("a"), ev.MatchString("left"), ev.MatchString("d"), ev.MatchString("right"):
					move.right = 0
				case ev.MatchString("q"), ev.MatchString("e"):
					move.up = 0
				}

			case uv.MouseClickEvent:
				if opts.LightMode {
					opts.LightDir = opts.PendingLight
					opts.LightMode = false
				} else {
					mouseDown = true
					lastMouseX, lastMouseY = ev.X, ev.Y
				}

			case uv.MouseReleaseEvent:
				if !opts.LightMode {
					mouseDown = false
				}

			case uv.MouseMotionEvent:
				if opts.LightMode {
					opts.PendingLight = ScreenToLightDir(ev.X, ev.Y, width, height)
				} else if mouseDown {
					dx := ev.X - lastMouseX
					dy := ev.Y - lastMouseY
					camera.Rotate(float64(dx)*mouseSensitivity, float64(dy)*mouseSensitivity)
					lastMouseX, lastMouseY = ev.X, ev.Y
				}

			case uv.MouseWheelEvent:
				switch ev.Button {
				case uv.MouseWheelUp:
					camera.MoveForward(0.5)
				case uv.MouseWheelDown:
					camera.MoveForward(-0.5)
				}
			}
		}
	}()

	// Main loop.
	lastFrame := time.Now()

	cleanup := func() {
		fmt.Fprint(os.Stdout, "\x1b[?1003l")
		fmt.Fprint(os.Stdout, "\x1b[?1006l")
		term.ExitAltScreen()
		term.ShowCursor()
		term.Shutdown(context.Background())
	}

	for {
		select {
		case <-ctx.Done():
			cleanup()
			return nil
		default:
		}

		frameStart := time.Now()
		dt := frameStart.Sub(lastFrame).Seconds()
		lastFrame = frameStart

		if dt > 0.1 {
			dt = 0.1
		}

		// Camera movement from held keys, decayed each frame.
		camera.MoveForward(move.forward * dt)
		camera.MoveRight(move.right * dt)
		camera.MoveUp(move.up * dt)
		move.forward *= 0.9
		move.right *= 0.9
		move.up *= 0.9

		spin.Update()

		// Render.
		params := opts.Params(spin, baseRotation)
		fb.Clear(render.ARGB(255, bgR, bgG, bgB))
		pipeline.BeginFrame(params)
		pipeline.RenderMesh(mesh, texture, params)
		pipeline.Flush()

		// Present.
		presenter.Render(fb)
		if err := presenter.Flush(); err != nil {
			cleanup()
			return fmt.Errorf("flush: %w", err)
		}

		hud.UpdateFPS()
		hud.Render(width, height, opts)

		// Frame cap.
		if opts.EnableCap && opts.FPSCap > 0 {
			targetDuration := time.Second / time.Duration(opts.FPSCap)
			if elapsed := time.Since(frameStart); elapsed < targetDuration {
				time.Sleep(targetDuration - elapsed)
			}
		}
	}
}
