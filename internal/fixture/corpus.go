package fixture

import (
	"path/filepath"
)

// Action is an annotation entry as written to annotation.json.
type Action struct {
	StartTimestamp float64  `json:"start_timestamp"`
	EndTimestamp   float64  `json:"end_timestamp"`
	Objects        []string `json:"objects"`
	Actors         []string `json:"actors"`
	Label          string   `json:"label"`
}

// Demo describes a demonstration in the per-demo-directory layout.
type Demo struct {
	Frames int
	Task   string
	// Actions defaults to a single 1.0s-3.6s grasp.
	Actions []Action
	// NoIntrinsics leaves the intrinsics entry out of the joints store.
	NoIntrinsics bool
	// PerJointVisibility stores (frames, 21) visibility instead of (frames,).
	PerJointVisibility bool
}

// DefaultActions is the annotation written when Demo.Actions is empty.
var DefaultActions = []Action{
	{StartTimestamp: 1.0, EndTimestamp: 3.6, Objects: []string{"Tazo green tea carton"}, Actors: []string{"left_hand"}, Label: "left hand grasps the carton"},
	{StartTimestamp: 3.6, EndTimestamp: 5.0, Objects: []string{"Tazo green tea carton"}, Actors: []string{"left_hand", "right_hand"}, Label: "both hands move the carton"},
}

// Intrinsics is the camera matrix written into generated joint stores.
var Intrinsics = []float64{500, 0, 320, 0, 500, 240, 0, 0, 1}

// LeftJoint is the position written for joint j of the left hand on frame
// f. Depth stays positive so projections are finite.
func LeftJoint(f, j int) [3]float64 {
	return [3]float64{0.001 * float64(f), 0.01 * float64(j), 0.5 + 0.001*float64(f)}
}

// WriteDemo writes video.mp4 (empty), joints.npz, metadata.npz,
// original_metadata.npz and annotation.json into dir and returns the video
// path.
func WriteDemo(dir string, d Demo) (string, error) {
	videoPath := filepath.Join(dir, "video.mp4")
	if err := Touch(videoPath); err != nil {
		return "", err
	}

	left := make([]float64, d.Frames*21*3)
	for f := 0; f < d.Frames; f++ {
		for j := 0; j < 21; j++ {
			p := LeftJoint(f, j)
			copy(left[(f*21+j)*3:], p[:])
		}
	}
	joints := map[string]Array{
		"left_hand":  {Data: left, Shape: []int{d.Frames, 21, 3}},
		"right_hand": Const(1, d.Frames, 21, 3),
		"fps":        Scalar(30),
	}
	if d.PerJointVisibility {
		joints["left_hand_visibility"] = Fill(func(i int) float64 { return float64(i % 2) }, d.Frames, 21)
		joints["right_hand_visibility"] = Const(1, d.Frames, 21)
	} else {
		joints["left_hand_visibility"] = Fill(func(i int) float64 { return float64(i % 2) }, d.Frames)
		joints["right_hand_visibility"] = Const(1, d.Frames)
	}
	if !d.NoIntrinsics {
		joints["intrinsics"] = Array{Data: Intrinsics, Shape: []int{3, 3}}
	}
	if err := WriteNPZ(filepath.Join(dir, "joints.npz"), joints); err != nil {
		return "", err
	}
	if err := WriteNPZ(filepath.Join(dir, "metadata.npz"), map[string]Array{
		"num_frames": Scalar(float64(d.Frames)),
	}); err != nil {
		return "", err
	}
	if err := WriteNPZ(filepath.Join(dir, "original_metadata.npz"), map[string]Array{
		"subject_id":       Scalar(1),
		"camera/extrinsic": Const(0, 4, 4),
	}); err != nil {
		return "", err
	}

	actions := d.Actions
	if len(actions) == 0 {
		actions = DefaultActions
	}
	task := d.Task
	if task == "" {
		task = "Picking up and moving various objects on a table."
	}
	err := WriteJSON(filepath.Join(dir, "annotation.json"), map[string]any{
		"task":       task,
		"actions":    actions,
		"video_info": map[string]any{"fps": 30, "num_frames": d.Frames},
	})
	return videoPath, err
}
