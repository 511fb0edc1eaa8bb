package main

import (
	"context"
	"log"

	"temple-sessions-be/internal/bootstrap"
	"temple-sessions-be/internal/config"
	"temple-sessions-be/internal/server"
	"temple-sessions-be/internal/tracer"
	"temple-sessions-be/pkg/content"
	"temple-sessions-be/pkg/database"
)

func main() {
	// 0. Initialize Tracer
	shutdownTracer := tracer.InitTracer()
	defer shutdownTracer(context.Background())

	// 1. Load Configuration
	cfg := config.Load()

	// 2. Initialize Database
	gormDB, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Panicf("Unable to connect to GORM DB: %v", err)
	}

	// 3. Content catalog. Served statically here; the full catalog service
	// syncs this from the CMS.
	catalog := content.NewStaticProvider(defaultExercises())

	// 4. Bootstrap Dependencies (Container)
	container := bootstrap.NewContainer(gormDB, cfg, catalog)

	// 5. Initialize Server
	srv := server.New(cfg, container)

	// 6. Run Server
	log.Fatal(srv.Run())
}

func defaultExercises() []*content.Exercise {
	return []*content.Exercise{
		{
			ID:   "8c9a8a36-7f7c-44e6-b0ed-f9d7b9e9b1a3",
			Name: "Anchored in breath",
			VideoLoop: &content.VideoSource{
				Source:  "https://static.29k.org/portals/breath/loop.mp4",
				Preview: "https://static.29k.org/portals/breath/loop.jpg",
				Audio:   "https://static.29k.org/portals/breath/ambience.mp3",
			},
			VideoEnd: &content.VideoSource{
				Source:  "https://static.29k.org/portals/breath/end.mp4",
				Preview: "https://static.29k.org/portals/breath/end.jpg",
			},
			Theme: &content.Theme{
				TextColor:       "#F9F8F4",
				BackgroundColor: "#2E2E2E",
			},
		},
		{
			// Audio-only exercise: no portal video, sessions go straight
			// to live when started.
			ID:   "5b4f54e2-2c63-4cf1-9a37-0e5a76c2e0d7",
			Name: "Evening wind-down",
			Theme: &content.Theme{
				TextColor: "#2E2E2E",
			},
		},
	}
}
