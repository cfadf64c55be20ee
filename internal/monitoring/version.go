package monitoring

// Version is set with -ldflags "-X github.com/umalmyha/leads/internal/monitoring.Version=..."
var Version = "dev"
