package buildpipeline

import "go.uber.org/zap"

// ChannelSink forwards events into a channel.
type ChannelSink struct {
	Ch chan<- Event
}

func (s ChannelSink) OnEvent(evt Event) {
	if s.Ch == nil {
		return
	}
	s.Ch <- evt
}

// LogSink writes pipeline-level events to a logger; per-file events are
// logged at debug level.
type LogSink struct {
	Log *zap.Logger
}

func (s LogSink) OnEvent(evt Event) {
	if s.Log == nil {
		return
	}
	fields := []zap.Field{
		zap.String("stage", string(evt.Stage)),
		zap.String("status", string(evt.Status)),
	}
	if evt.Elapsed > 0 {
		fields = append(fields, zap.Duration("elapsed", evt.Elapsed))
	}
	if evt.File != "" {
		s.Log.Debug("file progress", append(fields, zap.String("file", evt.File))...)
		return
	}
	if evt.Err != nil {
		s.Log.Warn("stage failed", append(fields, zap.Error(evt.Err))...)
		return
	}
	s.Log.Info("stage progress", fields...)
}

// multiSink fans events out to several sinks.
type multiSink []ProgressSink

func (m multiSink) OnEvent(evt Event) {
	for _, s := range m {
		if s != nil {
			s.OnEvent(evt)
		}
	}
}

// Tee combines sinks; nil entries are skipped.
func Tee(sinks ...ProgressSink) ProgressSink {
	var out multiSink
	for _, s := range sinks {
		if s != nil {
			out = append(out, s)
		}
	}
	switch len(out) {
	case 0:
		return nil
	case 1:
		return out[0]
	}
	return out
}
