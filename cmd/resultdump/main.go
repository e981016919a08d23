/*------------------------------------------------------------------
 *
 * Purpose:	Small diagnostic utility: listen on the result port,
 *		decode the wire format, and print channel delays for a
 *		human at a terminal.
 *
 *------------------------------------------------------------------*/
package main

import (
	"encoding/binary"
	"fmt"
	"math"
	"net"
	"os"

	"github.com/spf13/pflag"
)

func main() {
	port := pflag.IntP("port", "p", 3002, "UDP port to listen on")
	pflag.Parse()

	conn, err := net.ListenUDP("udp", &net.UDPAddr{Port: *port})
	if err != nil {
		fmt.Fprintln(os.Stderr, "listen:", err)
		os.Exit(1)
	}
	defer conn.Close()

	buf := make([]byte, 64)
	for {
		n, _, err := conn.ReadFromUDP(buf)
		if err != nil {
			fmt.Fprintln(os.Stderr, "read:", err)
			continue
		}
		if n < 24 {
			fmt.Fprintf(os.Stderr, "short result packet: %d bytes\n", n)
			continue
		}

		d1 := int32(binary.LittleEndian.Uint32(buf[0:4]))
		d2 := int32(binary.LittleEndian.Uint32(buf[4:8]))
		d3 := int32(binary.LittleEndian.Uint32(buf[8:12]))
		peak := int32(binary.LittleEndian.Uint32(buf[12:16]))
		fs := math.Float64frombits(binary.LittleEndian.Uint64(buf[16:24]))

		fmt.Printf("delays_ns=[%d %d %d] peak_index=%d fs=%.0fHz\n", d1, d2, d3, peak, fs)
	}
}
