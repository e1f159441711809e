// Package transcode runs the ffprobe/ffmpeg pipeline that turns uploaded
// audio payloads into retained raw artifacts and opus streaming derivatives.
package transcode
