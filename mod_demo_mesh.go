package sketch

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Demo mesh spin: the shader clock divided by these gives the X and Y
// rotation in radians.
const (
	DemoSpinDivisorX float32 = 2000
	DemoSpinDivisorY float32 = 1000
)

// DefaultDemoMeshSize is the demo quad size in world units.
var DefaultDemoMeshSize = mgl32.Vec2{200, 100}

// DemoMesh is a textured quad at the world origin that slowly spins with the
// shader clock, independent of the page.
type DemoMesh struct {
	Size mgl32.Vec2
	Id   PlaneId
}

// Spawn adds the mesh to store using texture. Spawning twice is a no-op.
func (d *DemoMesh) Spawn(store *PlaneStore, texture AssetId) PlaneId {
	if d.Id != "" {
		return d.Id
	}
	d.Id = store.AddDetached(texture, d.Size)
	return d.Id
}

type DemoMeshModule struct {
	Size mgl32.Vec2
}

func (m DemoMeshModule) Install(app *App, cmd *Commands) {
	size := m.Size
	if size.X() <= 0 || size.Y() <= 0 {
		size = DefaultDemoMeshSize
	}
	cmd.AddResources(&DemoMesh{Size: size})
	app.UseSystem(System(demoMeshSystem).InStage(Update))
}

func demoMeshSystem(clock *Clock, demo *DemoMesh, store *PlaneStore) {
	if demo.Id == "" {
		return
	}
	p, err := store.Get(demo.Id)
	if err != nil {
		return
	}
	p.Rotation = mgl32.Vec3{
		clock.Elapsed / DemoSpinDivisorX,
		clock.Elapsed / DemoSpinDivisorY,
		0,
	}
}
