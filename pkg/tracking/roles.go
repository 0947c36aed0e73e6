package tracking

// Role identifies the body mount point a tracker device is assigned to in
// the device registry. RoleAny accepts the first device that passes the
// tracker name heuristic, regardless of assigned role.
type Role int

const (
	RoleAny Role = iota
	RoleLeftFoot
	RoleRightFoot
	RoleLeftShoulder
	RoleRightShoulder
	RoleLeftElbow
	RoleRightElbow
	RoleLeftKnee
	RoleRightKnee
	RoleWaist
	RoleChest
	RoleCamera
	RoleKeyboard
)

// rolePaths is the fixed role-to-identifier mapping used for exact device
// matching. Paths follow the vive tracker role path convention.
var rolePaths = map[Role]string{
	RoleLeftFoot:      "/user/vive_tracker/role/left_foot",
	RoleRightFoot:     "/user/vive_tracker/role/right_foot",
	RoleLeftShoulder:  "/user/vive_tracker/role/left_shoulder",
	RoleRightShoulder: "/user/vive_tracker/role/right_shoulder",
	RoleLeftElbow:     "/user/vive_tracker/role/left_elbow",
	RoleRightElbow:    "/user/vive_tracker/role/right_elbow",
	RoleLeftKnee:      "/user/vive_tracker/role/left_knee",
	RoleRightKnee:     "/user/vive_tracker/role/right_knee",
	RoleWaist:         "/user/vive_tracker/role/waist",
	RoleChest:         "/user/vive_tracker/role/chest",
	RoleCamera:        "/user/vive_tracker/role/camera",
	RoleKeyboard:      "/user/vive_tracker/role/keyboard",
}

var roleNames = map[Role]string{
	RoleAny:           "any",
	RoleLeftFoot:      "left_foot",
	RoleRightFoot:     "right_foot",
	RoleLeftShoulder:  "left_shoulder",
	RoleRightShoulder: "right_shoulder",
	RoleLeftElbow:     "left_elbow",
	RoleRightElbow:    "right_elbow",
	RoleLeftKnee:      "left_knee",
	RoleRightKnee:     "right_knee",
	RoleWaist:         "waist",
	RoleChest:         "chest",
	RoleCamera:        "camera",
	RoleKeyboard:      "keyboard",
}

// Path returns the role's device path, or "" for RoleAny.
func (r Role) Path() string {
	return rolePaths[r]
}

func (r Role) String() string {
	if n, ok := roleNames[r]; ok {
		return n
	}
	return "unknown"
}

// ParseRole maps a role name (as used in config files) back to a Role.
// Unknown names map to RoleAny.
func ParseRole(name string) Role {
	for r, n := range roleNames {
		if n == name {
			return r
		}
	}
	return RoleAny
}
