// Package quality decides whether an analyzed clip is fit for publication.
package quality
