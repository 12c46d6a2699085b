package enums

type Protocol string

const (
	ProtocolHTTP  Protocol = "http"
	ProtocolHTTPS Protocol = "https"
	ProtocolHLS   Protocol = "m3u8_native"
	ProtocolDASH  Protocol = "http_dash_segments"
)
