// Command clipflow runs the clip pipeline and inspects its state.
package main
