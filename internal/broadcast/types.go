package broadcast

// Source identifies what feeds the broadcast
const (
	SourcePlaylist = "playlist"
	SourceLive     = "live"
)

// Transmission protocols accepted by ConfigureTransmission
var validProtocols = map[string]bool{
	"ip":   true,
	"udp":  true,
	"rtmp": true,
	"hls":  true,
	"dash": true,
}

// StartRequest is the payload for a start-broadcast call
type StartRequest struct {
	ChannelID     string   `json:"channelId"`
	Source        string   `json:"source"`
	MediaURLs     []string `json:"mediaUrls,omitempty"`
	LiveSourceURL string   `json:"liveSourceUrl,omitempty"`
	Loop          bool     `json:"loop"`
}

// StartResponse is the collaborator's answer to a start-broadcast call
type StartResponse struct {
	Success    bool   `json:"success"`
	StreamID   string `json:"streamId"`
	HLSURL     string `json:"hlsUrl"`
	PlayerURL  string `json:"playerUrl"`
	IframeCode string `json:"iframeCode"`
	IPHTTPURL  string `json:"ipHttpUrl"`
	Status     string `json:"status"`
	Viewers    int    `json:"viewers,omitempty"`
	Bitrate    string `json:"bitrate,omitempty"`
	Simulation bool   `json:"simulationMode,omitempty"`
	Error      string `json:"error,omitempty"`
}

// StopRequest is the payload for a stop-broadcast call.
// StreamID is preferred; ChannelID is the fallback key.
type StopRequest struct {
	ChannelID string `json:"channelId,omitempty"`
	StreamID  string `json:"streamId,omitempty"`
	Reason    string `json:"reason,omitempty"`
}

// StopResponse is the collaborator's answer to a stop-broadcast call
type StopResponse struct {
	Success   bool   `json:"success"`
	StreamID  string `json:"streamId"`
	Status    string `json:"status"`
	StoppedAt string `json:"stoppedAt"`
	Error     string `json:"error,omitempty"`
}

// StatusResponse is the collaborator's answer to a status poll. The
// telemetry fields are pointers so an omitted value is distinguishable
// from a reported zero.
type StatusResponse struct {
	Success   bool    `json:"success"`
	StreamID  string  `json:"streamId"`
	Status    string  `json:"status"`
	Viewers   *int    `json:"viewers,omitempty"`
	Bitrate   *string `json:"bitrate,omitempty"`
	Duration  *int64  `json:"duration,omitempty"`
	HLSURL    string  `json:"hlsUrl,omitempty"`
	IframeURL string  `json:"iframeUrl,omitempty"`
	Error     string  `json:"error,omitempty"`
}

// TransmitRequest is the payload for a configure-transmission call
type TransmitRequest struct {
	ChannelID   string `json:"channelId"`
	StreamID    string `json:"streamId,omitempty"`
	Protocol    string `json:"protocol"`
	Destination string `json:"destination"`
}

// TransmitResponse is the collaborator's answer to a configure-transmission call
type TransmitResponse struct {
	Success  bool   `json:"success"`
	StreamID string `json:"streamId"`
	Status   string `json:"status"`
	HLSURL   string `json:"hlsUrl,omitempty"`
	Error    string `json:"error,omitempty"`
}
