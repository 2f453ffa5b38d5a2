package version

// Version is the single source of truth for the scalpel version.
// Release tooling rewrites this constant; nothing else should carry a
// version string.
const Version = "0.3.0"
