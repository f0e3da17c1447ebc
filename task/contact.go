// Copyright (c) 2019, The CCNLab Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package task

import "github.com/goki/mat32"

// GraspNormalY is how closely a contact normal must align with +Y or -Y to
// count as one side of a grasp.
const GraspNormalY = 0.99

// Grasped is true when the contacts include one normal pointing along +Y and
// one along -Y: the gripper fingers press on opposite faces.
func Grasped(normals []mat32.Vec3) bool {
	var pos, neg bool
	for _, n := range normals {
		if n.Y > GraspNormalY {
			pos = true
		}
		if n.Y < -GraspNormalY {
			neg = true
		}
	}
	return pos && neg
}

// Touching is true when any contact normal is non-zero.
func Touching(normals []mat32.Vec3) bool {
	for _, n := range normals {
		if n != (mat32.Vec3{}) {
			return true
		}
	}
	return false
}
