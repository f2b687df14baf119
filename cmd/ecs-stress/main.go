// Command ecs-stress drives a voxel-world simulation against the ecs
// package and reports steady-state frame timing and memory behavior. It
// stands in for plus3-ooftn's generated-component stress harness: rather
// than code-generated components/systems, it builds a small but
// representative voxel scene (chunks related to a root by a tree-like
// Parent relation, each chunk holding perlin-sampled density voxels moved
// by a simple physics system) so every part of the ecs package — dense
// component storage, sparse relations, queries, and the scheduler — is
// exercised under load.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"runtime"
	"time"

	"github.com/aquilax/go-perlin"
	"github.com/pkg/profile"

	"github.com/plus3/voxelcore/ecs"
)

type Position struct{ X, Y, Z float64 }

type Velocity struct{ X, Y, Z float64 }

type ChunkCoord struct{ X, Y, Z int }

type Voxel struct {
	Density [16][16][16]float32
}

// ChildOf is a tree-like relation from a chunk entity to its parent region,
// exercising the relation table's cycle/second-parent checks under load.
type ChildOf struct{}

func registerTypes(registry *ecs.Registry) {
	ecs.RegisterComponent[Position](registry)
	ecs.RegisterComponent[Velocity](registry)
	ecs.RegisterComponent[ChunkCoord](registry)
	ecs.RegisterComponent[Voxel](registry)
	ecs.RegisterRelation[ChildOf](registry, ecs.RelationTraits{TreeLike: true})
}

func generateWorld(world *ecs.World, noise *perlin.Perlin, entityCount, chunkSize int) {
	root := world.Create()
	ecs.Add(world, root, Position{})

	for i := 0; i < entityCount; i++ {
		chunk := world.Create()
		coord := ChunkCoord{X: i % chunkSize, Y: (i / chunkSize) % chunkSize, Z: i / (chunkSize * chunkSize)}
		ecs.Add(world, chunk, coord)
		ecs.Add(world, chunk, Position{X: float64(coord.X * 16), Y: float64(coord.Y * 16), Z: float64(coord.Z * 16)})
		ecs.Add(world, chunk, Velocity{X: rand.Float64() - 0.5, Y: rand.Float64() - 0.5, Z: rand.Float64() - 0.5})

		var voxel Voxel
		for x := 0; x < 16; x++ {
			for y := 0; y < 16; y++ {
				for z := 0; z < 16; z++ {
					sample := noise.Noise3D(
						float64(coord.X*16+x)*0.05,
						float64(coord.Y*16+y)*0.05,
						float64(coord.Z*16+z)*0.05,
					)
					voxel.Density[x][y][z] = float32(sample)
				}
			}
		}
		ecs.Add(world, chunk, voxel)

		if err := ecs.SetRelation(world, chunk, root, ChildOf{}); err != nil {
			log.Fatalf("failed to attach chunk %d to root: %v", i, err)
		}
	}
}

func buildScheduler(world *ecs.World) *ecs.Scheduler {
	scheduler := ecs.NewScheduler(world)

	movement := ecs.NewQuery[struct {
		Pos *Position
		Vel *Velocity
	}](world)

	movementSystem := scheduler.AddSystem("movement", []string{"physics"}, func(frame *ecs.UpdateFrame) {
		movement.Execute()
		for item := range movement.Values() {
			item.Pos.X += item.Vel.X * frame.DeltaTime
			item.Pos.Y += item.Vel.Y * frame.DeltaTime
			item.Pos.Z += item.Vel.Z * frame.DeltaTime
		}
	})

	settleCondition := scheduler.AddCondition("has-moving-chunks", func(w *ecs.World) bool {
		movement.Execute()
		return movement.Len() > 0
	})
	scheduler.OnlyIf(movementSystem, settleCondition)

	return scheduler
}

func main() {
	duration := flag.Duration("duration", 10*time.Second, "The total duration the test should run for.")
	entityCount := flag.Int("entities", 10000, "The initial number of chunk entities to create.")
	chunkSize := flag.Int("chunk-size", 32, "Chunks per axis in the generated region.")
	gcPauseMetrics := flag.Bool("gc-pause-metrics", false, "Enable detailed GC pause metrics in the report.")
	cpuProfile := flag.Bool("cpu-profile", false, "Capture a CPU profile for the run (written to the working directory).")
	seed := flag.Int64("seed", 1, "Perlin noise seed for terrain generation.")
	flag.Parse()

	if *cpuProfile {
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(".")).Stop()
	}

	log.Println("Starting ECS stress test...")

	registry := ecs.NewRegistry()
	registerTypes(registry)
	world := ecs.NewWorld(registry)
	ecs.InitHostResources(world, os.Args)
	noise := perlin.NewPerlin(2, 2, 3, *seed)

	log.Printf("Generating %d chunk entities...\n", *entityCount)
	generateWorld(world, noise, *entityCount, *chunkSize)
	log.Println("Generation complete.")

	scheduler := buildScheduler(world)

	report := &Report{
		Duration:  *duration,
		Entities:  *entityCount,
		ChunkSize: *chunkSize,
		Systems:   1,
		UpdateTime: Stats{
			Samples: make([]time.Duration, 0),
		},
		GCPauseMetrics: *gcPauseMetrics,
	}

	runtime.ReadMemStats(&report.MemStatsStart)

	log.Printf("Running simulation for %s...\n", *duration)
	ctx, cancel := context.WithTimeout(context.Background(), *duration)
	defer cancel()

	ecs.SetResource(world, ecs.ShouldQuit(false))

	startTime := time.Now()
	var totalUpdates int64
	lastFrameTime := time.Now()

Loop:
	for {
		select {
		case <-ctx.Done():
			break Loop
		default:
			if quit, ok := ecs.Resource[ecs.ShouldQuit](world); ok && bool(*quit) {
				break Loop
			}

			deltaTime := time.Since(lastFrameTime)
			lastFrameTime = time.Now()

			updateStart := time.Now()
			if err := scheduler.Run(deltaTime.Seconds()); err != nil {
				log.Fatalf("scheduler run failed: %v", err)
			}
			updateDuration := time.Since(updateStart)

			report.UpdateTime.Samples = append(report.UpdateTime.Samples, updateDuration)
			totalUpdates++
		}
	}

	report.TotalTime = time.Since(startTime)
	report.TotalUpdates = totalUpdates
	report.UpdateTime.Finalize()
	runtime.ReadMemStats(&report.MemStatsEnd)

	log.Println("Simulation finished.")

	fmt.Println("\n\n--- Stress Test Report ---")
	if err := report.Generate(os.Stdout); err != nil {
		log.Fatalf("Failed to generate report: %v", err)
	}
	fmt.Println("--- End of Report ---")

	log.Println("Stress test complete.")
}
