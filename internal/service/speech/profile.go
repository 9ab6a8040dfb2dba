package speech

import (
	"sort"
	"strings"
)

// CloudProfile pins a cloud synthesis variant to a language and a regional
// top-level domain of the translate endpoint.
type CloudProfile struct {
	Language string
	TLD      string
}

// LocalEngineID selects the on-device backend.
const LocalEngineID = "local"

// DefaultCloudEngineID is the fallback entry for unrecognized cloud ids.
const DefaultCloudEngineID = "gtts_uk"

const cloudEnginePrefix = "gtts"

var cloudProfiles = map[string]CloudProfile{
	"gtts_uk": {Language: "en", TLD: "co.uk"},
	"gtts_us": {Language: "en", TLD: "com"},
	"gtts_au": {Language: "en", TLD: "com.au"},
	"gtts_in": {Language: "en", TLD: "co.in"},
	"gtts_ie": {Language: "en", TLD: "ie"},
	"gtts_za": {Language: "en", TLD: "co.za"},
}

// ResolveCloudProfile maps an engine id to its cloud profile. Any id with
// the cloud prefix resolves; unknown variants silently fall back to the
// default entry instead of failing.
func ResolveCloudProfile(engineID string) (CloudProfile, bool) {
	if profile, ok := cloudProfiles[engineID]; ok {
		return profile, true
	}
	if strings.HasPrefix(engineID, cloudEnginePrefix) {
		return cloudProfiles[DefaultCloudEngineID], true
	}
	return CloudProfile{}, false
}

// Engines lists every dispatchable engine id for capability discovery.
func Engines() []string {
	ids := make([]string, 0, len(cloudProfiles)+1)
	for id := range cloudProfiles {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return append(ids, LocalEngineID)
}
