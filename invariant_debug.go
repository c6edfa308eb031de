//go:build satswarm_debug

package satswarm

const debugAssertions = true
