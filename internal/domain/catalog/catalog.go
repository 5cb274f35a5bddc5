// Package catalog holds the read-only library of poses and routines.
package catalog

import (
	"context"
	"fmt"

	"github.com/okian/poseflow/internal/domain/model"
)

// Option applies a configuration option to the Catalog.
type Option func(*Catalog)

// WithPoses replaces the built-in poses.
func WithPoses(poses []model.Pose) Option {
	return func(c *Catalog) {
		c.poses = poses
	}
}

// WithRoutines replaces the built-in routines.
func WithRoutines(routines []model.Routine) Option {
	return func(c *Catalog) {
		c.routines = routines
	}
}

// Catalog is an immutable, ordered pose and routine library.
// It is safe for concurrent use.
type Catalog struct {
	poses     []model.Pose
	routines  []model.Routine
	poseIdx   map[string]int
	routineIx map[string]int
}

// New builds a catalog from the built-in content unless overridden.
func New(opts ...Option) *Catalog {
	c := &Catalog{
		poses:    defaultPoses(),
		routines: defaultRoutines(),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.poseIdx = make(map[string]int, len(c.poses))
	for i, p := range c.poses {
		c.poseIdx[p.ID] = i
	}
	c.routineIx = make(map[string]int, len(c.routines))
	for i, r := range c.routines {
		c.routineIx[r.ID] = i
	}
	return c
}

// Pose returns the pose with the given id.
func (c *Catalog) Pose(_ context.Context, id string) (model.Pose, error) {
	i, ok := c.poseIdx[id]
	if !ok {
		return model.Pose{}, fmt.Errorf("%w: %s", ErrPoseNotFound, id)
	}
	return c.poses[i], nil
}

// Poses lists poses in catalog order. An empty difficulty matches all.
func (c *Catalog) Poses(_ context.Context, difficulty model.Difficulty) []model.Pose {
	out := make([]model.Pose, 0, len(c.poses))
	for _, p := range c.poses {
		if difficulty == "" || p.Difficulty == difficulty {
			out = append(out, p)
		}
	}
	return out
}

// Routine returns the routine with the given id.
func (c *Catalog) Routine(_ context.Context, id string) (model.Routine, error) {
	i, ok := c.routineIx[id]
	if !ok {
		return model.Routine{}, fmt.Errorf("%w: %s", ErrRoutineNotFound, id)
	}
	return c.routines[i], nil
}

// Routines lists routines matching both filters; empty filters match all.
func (c *Catalog) Routines(_ context.Context, difficulty model.Difficulty, category string) []model.Routine {
	out := make([]model.Routine, 0, len(c.routines))
	for _, r := range c.routines {
		if difficulty != "" && r.Difficulty != difficulty {
			continue
		}
		if category != "" && r.Category != category {
			continue
		}
		out = append(out, r)
	}
	return out
}

// RoutinePoses resolves a routine's pose ids in order, repeats included.
func (c *Catalog) RoutinePoses(ctx context.Context, id string) ([]model.Pose, error) {
	r, err := c.Routine(ctx, id)
	if err != nil {
		return nil, err
	}
	poses := make([]model.Pose, 0, len(r.PoseIDs))
	for _, pid := range r.PoseIDs {
		p, err := c.Pose(ctx, pid)
		if err != nil {
			return nil, fmt.Errorf("routine %s: %w", id, err)
		}
		poses = append(poses, p)
	}
	return poses, nil
}

// Categories lists distinct routine categories in first-seen order.
func (c *Catalog) Categories(_ context.Context) []string {
	seen := make(map[string]struct{}, len(c.routines))
	out := make([]string, 0, len(c.routines))
	for _, r := range c.routines {
		if _, ok := seen[r.Category]; ok {
			continue
		}
		seen[r.Category] = struct{}{}
		out = append(out, r.Category)
	}
	return out
}
