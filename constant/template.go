package constant

// StateTemplate renders a one-line playback summary for headless output.
const StateTemplate = `{{ .Icon }} {{ .Position }} / {{ .Duration }}{{ if .Bitrate }}  {{ .Bitrate }}{{ end }}{{ if .Buffering }}  buffering{{ end }}`
