package benchmarks

// ManoJointNames is the canonical 21-joint hand skeleton, in storage order.
var ManoJointNames = []string{
	"wrist",
	"thumb_cmc", "thumb_mcp", "thumb_ip", "thumb_tip",
	"index_mcp", "index_pip", "index_dip", "index_tip",
	"middle_mcp", "middle_pip", "middle_dip", "middle_tip",
	"ring_mcp", "ring_pip", "ring_dip", "ring_tip",
	"pinky_mcp", "pinky_pip", "pinky_dip", "pinky_tip",
}

// egoDexFingers pairs EgoDex finger prefixes with MANO finger names.
var egoDexFingers = [][2]string{
	{"IndexFinger", "index"},
	{"MiddleFinger", "middle"},
	{"RingFinger", "ring"},
	{"LittleFinger", "pinky"},
}

// egoDexJointNames maps EgoDex transform names ("leftThumbKnuckle") to
// hand-prefixed MANO names ("left_thumb_cmc"). Names without an entry, such
// as the metacarpals and body joints, keep their EgoDex name.
var egoDexJointNames = buildEgoDexJointNames()

func buildEgoDexJointNames() map[string]string {
	suffixes := map[string]string{
		"Hand":                  "wrist",
		"ThumbKnuckle":          "thumb_cmc",
		"ThumbIntermediateBase": "thumb_mcp",
		"ThumbIntermediateTip":  "thumb_ip",
		"ThumbTip":              "thumb_tip",
	}
	for _, f := range egoDexFingers {
		suffixes[f[0]+"Knuckle"] = f[1] + "_mcp"
		suffixes[f[0]+"IntermediateBase"] = f[1] + "_pip"
		suffixes[f[0]+"IntermediateTip"] = f[1] + "_dip"
		suffixes[f[0]+"Tip"] = f[1] + "_tip"
	}
	names := make(map[string]string, 2*len(suffixes))
	for _, side := range []string{"left", "right"} {
		for ego, mano := range suffixes {
			names[side+ego] = side + "_" + mano
		}
	}
	return names
}

// ManoName returns the MANO name of an EgoDex joint, or the name unchanged.
func ManoName(egoDex string) string {
	if n, ok := egoDexJointNames[egoDex]; ok {
		return n
	}
	return egoDex
}
