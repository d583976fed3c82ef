package achievement

// Trigger predicates. Config values come from admin-edited JSON, so every
// field read is defensive: missing or mistyped fields simply keep the
// predicate from firing.

func statThreshold(cfg map[string]interface{}, ctx *Context) bool {
	field := cfgString(cfg, "field")
	if field == "" {
		return false
	}
	return ctx.Stats[field] >= cfgInt64(cfg, "value")
}

func xpMilestone(cfg map[string]interface{}, ctx *Context) bool {
	value := cfgInt64(cfg, "value")
	return value > 0 && ctx.XP >= value
}

func starMilestone(cfg map[string]interface{}, ctx *Context) bool {
	value := cfgInt64(cfg, "value")
	if value <= 0 {
		return false
	}
	switch cfgString(cfg, "scope") {
	case "season":
		return ctx.SeasonStars >= value
	case "lifetime":
		return ctx.LifetimeStars >= value
	default:
		return false
	}
}

func levelReached(cfg map[string]interface{}, ctx *Context) bool {
	value := cfgInt64(cfg, "value")
	return value > 0 && int64(ctx.Level) >= value
}

func levelInterval(cfg map[string]interface{}, ctx *Context) bool {
	interval := cfgInt64(cfg, "interval")
	return ctx.LeveledUp && interval > 0 && int64(ctx.Level)%interval == 0
}

func eventCount(cfg map[string]interface{}, ctx *Context) bool {
	eventType := cfgString(cfg, "event_type")
	count := cfgInt64(cfg, "count")
	if eventType == "" || count <= 0 {
		return false
	}
	return ctx.EventCounts[eventType] >= count
}

func firstEvent(cfg map[string]interface{}, ctx *Context) bool {
	eventType := cfgString(cfg, "event_type")
	if eventType == "" {
		return false
	}
	return ctx.EventCounts[eventType] >= 1
}

func neverFires(_ map[string]interface{}, _ *Context) bool {
	return false
}

func cfgString(cfg map[string]interface{}, key string) string {
	if v, ok := cfg[key].(string); ok {
		return v
	}
	return ""
}

func cfgInt64(cfg map[string]interface{}, key string) int64 {
	switch v := cfg[key].(type) {
	case float64:
		// JSON numbers decode as float64
		return int64(v)
	case int:
		return int64(v)
	case int64:
		return v
	default:
		return 0
	}
}
