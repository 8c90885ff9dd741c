package blender

import (
	"bytes"
	"context"
	"encoding/json"
	"os/exec"
	"strings"
	"time"

	"github.com/breckenedge/lego-part-renderer/pkg/errors"
	"github.com/breckenedge/lego-part-renderer/pkg/geom"
	"github.com/breckenedge/lego-part-renderer/pkg/scene"
)

// sceneDump is the JSON document the inspection script prints on stdout.
type sceneDump struct {
	Objects []objectDump `json:"objects"`
}

type objectDump struct {
	Name        string        `json:"name"`
	Type        string        `json:"type"`
	MatrixWorld [4][4]float64 `json:"matrix_world"`
	BoundBox    [8][3]float64 `json:"bound_box"`
}

// Inspect imports the part in a headless Blender session and returns the
// resulting scene objects, without rendering anything.
func (r *Runner) Inspect(ctx context.Context, input, libraryRoot string) ([]scene.Object, error) {
	timeout := r.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	args := []string{
		"--background",
		"--python", r.InspectScript,
		"--",
		"--input", input,
		"--library-root", libraryRoot,
	}
	r.logger().Debug("inspecting scene", "binary", r.Binary, "part", input)

	cmd := exec.CommandContext(ctx, r.Binary, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	if err := cmd.Run(); err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, errors.Wrap(errors.ErrCodeTimeout, ctx.Err(), "inspection of %s timed out after %s", input, timeout)
		}
		return nil, errors.Wrap(errors.ErrCodeRenderFailed, err, "inspection of %s failed: %s", input, strings.TrimSpace(stderr.String()))
	}
	r.logger().Debug("inspection finished", "duration", time.Since(start).Round(time.Millisecond))

	return ParseSceneDump(stdout.Bytes())
}

// ParseSceneDump decodes an inspection dump. Blender mixes its own startup
// chatter into stdout, so decoding starts at the first '{'.
func ParseSceneDump(data []byte) ([]scene.Object, error) {
	if i := bytes.IndexByte(data, '{'); i >= 0 {
		data = data[i:]
	} else {
		return nil, errors.New(errors.ErrCodeRenderFailed, "inspection produced no scene dump")
	}

	var dump sceneDump
	if err := json.Unmarshal(data, &dump); err != nil {
		return nil, errors.Wrap(errors.ErrCodeRenderFailed, err, "decode scene dump")
	}

	objects := make([]scene.Object, 0, len(dump.Objects))
	for _, o := range dump.Objects {
		obj := scene.Object{
			Name:        o.Name,
			Kind:        parseKind(o.Type),
			MatrixWorld: geom.Mat4(o.MatrixWorld),
		}
		for i, c := range o.BoundBox {
			obj.BoundBox[i] = geom.Vec3{X: c[0], Y: c[1], Z: c[2]}
		}
		objects = append(objects, obj)
	}
	return objects, nil
}

func parseKind(s string) scene.Kind {
	switch strings.ToUpper(s) {
	case "MESH":
		return scene.KindMesh
	case "CAMERA":
		return scene.KindCamera
	case "LIGHT":
		return scene.KindLight
	default:
		return scene.KindEmpty
	}
}
