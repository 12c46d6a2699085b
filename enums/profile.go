package enums

type Profile string

const (
	ProfileFastest  Profile = "FASTEST"
	ProfileBalanced Profile = "BALANCED"
	ProfileQuality  Profile = "QUALITY"
)
