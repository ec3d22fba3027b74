// Package scene loads and validates the scene configuration file.
package scene

import (
	"encoding/json"
	"fmt"
	"os"
)

// Config holds the startup settings of the viewer. Load decodes the file over
// Default(), so fields absent from the file keep their default values.
type Config struct {
	// Paths
	ModelPath   string `json:"model_path"`
	TexturePath string `json:"texture_path"`

	// Model placement
	ModelScale       [3]float64 `json:"model_scale"`
	ModelRotation    [3]float64 `json:"model_rotation"`
	ModelTranslation [3]float64 `json:"model_translation"`

	// Camera
	CameraPosition [3]float64 `json:"camera_position"`
	CameraYawPitch [2]float64 `json:"camera_yaw_pitch"`

	// Light ray direction
	LightDirection [3]float64 `json:"light_direction"`

	// Projection
	FOVDegrees float64 `json:"fov_degrees"`
	ZNear      float64 `json:"z_near"`
	ZFar       float64 `json:"z_far"`

	// Frame pacing
	FPSCap    int  `json:"fps_cap"`
	EnableCap bool `json:"enable_cap"`
}

// Default returns the settings used when no config file is given.
func Default() Config {
	return Config{
		ModelScale:       [3]float64{1, 1, 1},
		ModelTranslation: [3]float64{0, 0, 5.5},
		LightDirection:   [3]float64{0, 0, 1},
		FOVDegrees:       60,
		ZNear:            0.5,
		ZFar:             20,
		FPSCap:           60,
		EnableCap:        true,
	}
}

// Load reads a JSON config file over the defaults.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	cfg := Default()
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

// Validate reports configuration errors that must abort startup; the
// renderer never runs with a malformed scene.
func (c Config) Validate() error {
	if c.FOVDegrees <= 0 || c.FOVDegrees >= 180 {
		return fmt.Errorf("config: fov %.1f out of range (0, 180)", c.FOVDegrees)
	}
	if c.ZNear <= 0 {
		return fmt.Errorf("config: z_near %.3f must be positive", c.ZNear)
	}
	if c.ZNear >= c.ZFar {
		return fmt.Errorf("config: z_near %.3f must be less than z_far %.3f", c.ZNear, c.ZFar)
	}
	if c.FPSCap <= 0 {
		return fmt.Errorf("config: fps_cap %d must be positive", c.FPSCap)
	}
	return nil
}
