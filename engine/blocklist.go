package engine

import "github.com/go-rod/rod/lib/proto"

// configToProto maps human-readable config strings to protocol resource
// types for request blocking on rendered paths.
var configToProto = map[string]proto.NetworkResourceType{
	"Image":      proto.NetworkResourceTypeImage,
	"Stylesheet": proto.NetworkResourceTypeStylesheet,
	"Font":       proto.NetworkResourceTypeFont,
	"Media":      proto.NetworkResourceTypeMedia,
	"Script":     proto.NetworkResourceTypeScript,
}

// blockedResourceSet builds an O(1) lookup set from config strings,
// ignoring unknown names.
func blockedResourceSet(names []string) map[proto.NetworkResourceType]struct{} {
	set := make(map[proto.NetworkResourceType]struct{}, len(names))
	for _, name := range names {
		if rt, ok := configToProto[name]; ok {
			set[rt] = struct{}{}
		}
	}
	return set
}
