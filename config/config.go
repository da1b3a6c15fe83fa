// The MIT License (MIT)
//
// Copyright (c) 2021 srs-bench(ossrs)
//
// Permission is hereby granted, free of charge, to any person obtaining a copy of
// this software and associated documentation files (the "Software"), to deal in
// the Software without restriction, including without limitation the rights to
// use, copy, modify, merge, publish, distribute, sublicense, and/or sell copies of
// the Software, and to permit persons to whom the Software is furnished to do so,
// subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY, FITNESS
// FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE AUTHORS OR
// COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER LIABILITY, WHETHER
// IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM, OUT OF OR IN
// CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE SOFTWARE.

// Package config holds the settings of the rtppkts, rtcppkts and icmppkts tools. The values
// start from the defaults, then an optional TOML file, then the command line flags.
package config

import (
	"fmt"
	"github.com/BurntSushi/toml"
	"github.com/ossrs/go-oryx-lib/errors"
	"strconv"
	"strings"
)

const (
	DefaultTransportCC          = 3
	DefaultAbsSendTime          = 2
	DefaultDependencyDescriptor = 12
	DefaultGTPPort              = 2152
	DefaultQueueSize            = 1024
)

// Extensions are the RTP header extension ids, 0 disables one.
type Extensions struct {
	TransportCC          uint8 `toml:"transport_cc"`
	AbsSendTime          uint8 `toml:"abs_send_time"`
	DependencyDescriptor uint8 `toml:"dependency_descriptor"`
}

func (v Extensions) String() string {
	return fmt.Sprintf("twcc=%v, abs-send-time=%v, av1-dd=%v", v.TransportCC, v.AbsSendTime, v.DependencyDescriptor)
}

func (v Extensions) validate() error {
	seen := make(map[uint8]string)
	for _, ext := range []struct {
		name string
		id   uint8
	}{
		{"transport_cc", v.TransportCC},
		{"abs_send_time", v.AbsSendTime},
		{"dependency_descriptor", v.DependencyDescriptor},
	} {
		if ext.id == 0 {
			continue
		}
		if other, ok := seen[ext.id]; ok {
			return errors.Errorf("extension id %v used by %v and %v", ext.id, other, ext.name)
		}
		seen[ext.id] = ext.name
	}
	return nil
}

// RTPConfig is the config of rtppkts.
type RTPConfig struct {
	Input      string     `toml:"input"`
	Output     string     `toml:"output"`
	Extensions Extensions `toml:"extensions"`
	// UDP port of GTP-U tunnels, 0 disables the decapsulation.
	GTPPort uint16 `toml:"gtp_port"`
	// Frames buffered between the reader and the decoder.
	QueueSize int `toml:"queue_size"`
}

func NewRTPConfig() *RTPConfig {
	return &RTPConfig{
		Extensions: Extensions{
			TransportCC:          DefaultTransportCC,
			AbsSendTime:          DefaultAbsSendTime,
			DependencyDescriptor: DefaultDependencyDescriptor,
		},
		GTPPort:   DefaultGTPPort,
		QueueSize: DefaultQueueSize,
	}
}

// LoadRTP returns the defaults overridden by the TOML file, if any.
func LoadRTP(filename string) (*RTPConfig, error) {
	v := NewRTPConfig()
	if err := decodeFile(filename, v); err != nil {
		return nil, err
	}
	return v, nil
}

func (v *RTPConfig) Validate() error {
	if v.Input == "" {
		return errors.New("no input file")
	}
	if v.Output == "" {
		return errors.New("no output file")
	}
	if v.QueueSize <= 0 {
		return errors.Errorf("invalid queue size %v", v.QueueSize)
	}
	return v.Extensions.validate()
}

func (v *RTPConfig) String() string {
	return fmt.Sprintf("input=%v, output=%v, %v, gtp=%v", v.Input, v.Output, v.Extensions, v.GTPPort)
}

// RTCPConfig is the config of rtcppkts.
type RTCPConfig struct {
	Input      string `toml:"input"`
	TWCCOutput string `toml:"twcc_output"`
	NACKOutput string `toml:"nack_output"`
	RROutput   string `toml:"rr_output"`
	// Only datagrams with either UDP port in the list are processed.
	Ports     []uint16 `toml:"ports"`
	GTPPort   uint16   `toml:"gtp_port"`
	QueueSize int      `toml:"queue_size"`
}

func NewRTCPConfig() *RTCPConfig {
	return &RTCPConfig{
		GTPPort:   DefaultGTPPort,
		QueueSize: DefaultQueueSize,
	}
}

// LoadRTCP returns the defaults overridden by the TOML file, if any.
func LoadRTCP(filename string) (*RTCPConfig, error) {
	v := NewRTCPConfig()
	if err := decodeFile(filename, v); err != nil {
		return nil, err
	}
	return v, nil
}

func (v *RTCPConfig) Validate() error {
	if v.Input == "" {
		return errors.New("no input file")
	}
	if v.TWCCOutput == "" || v.NACKOutput == "" || v.RROutput == "" {
		return errors.New("no twcc, nack or rr output file")
	}
	if len(v.Ports) == 0 {
		return errors.New("no udp ports")
	}
	for _, port := range v.Ports {
		if port == 0 {
			return errors.New("invalid udp port 0")
		}
	}
	if v.QueueSize <= 0 {
		return errors.Errorf("invalid queue size %v", v.QueueSize)
	}
	return nil
}

// PortSet is the lookup table of Ports.
func (v *RTCPConfig) PortSet() map[uint16]bool {
	ports := make(map[uint16]bool, len(v.Ports))
	for _, port := range v.Ports {
		ports[port] = true
	}
	return ports
}

func (v *RTCPConfig) String() string {
	return fmt.Sprintf("input=%v, twcc=%v, nack=%v, rr=%v, ports=%v, gtp=%v",
		v.Input, v.TWCCOutput, v.NACKOutput, v.RROutput, v.Ports, v.GTPPort)
}

// ICMPConfig is the config of icmppkts.
type ICMPConfig struct {
	Input     string `toml:"input"`
	Output    string `toml:"output"`
	GTPPort   uint16 `toml:"gtp_port"`
	QueueSize int    `toml:"queue_size"`
}

func NewICMPConfig() *ICMPConfig {
	return &ICMPConfig{
		GTPPort:   DefaultGTPPort,
		QueueSize: DefaultQueueSize,
	}
}

// LoadICMP returns the defaults overridden by the TOML file, if any.
func LoadICMP(filename string) (*ICMPConfig, error) {
	v := NewICMPConfig()
	if err := decodeFile(filename, v); err != nil {
		return nil, err
	}
	return v, nil
}

func (v *ICMPConfig) Validate() error {
	if v.Input == "" {
		return errors.New("no input file")
	}
	if v.Output == "" {
		return errors.New("no output file")
	}
	if v.QueueSize <= 0 {
		return errors.Errorf("invalid queue size %v", v.QueueSize)
	}
	return nil
}

func (v *ICMPConfig) String() string {
	return fmt.Sprintf("input=%v, output=%v, gtp=%v", v.Input, v.Output, v.GTPPort)
}

// ParsePorts parses a comma separated list of UDP ports, like "5000,5001".
func ParsePorts(s string) ([]uint16, error) {
	var ports []uint16
	for _, token := range strings.Split(s, ",") {
		if token = strings.TrimSpace(token); token == "" {
			continue
		}

		port, err := strconv.ParseUint(token, 10, 16)
		if err != nil || port == 0 {
			return nil, errors.Errorf("invalid port number %v", token)
		}
		ports = append(ports, uint16(port))
	}
	return ports, nil
}

func decodeFile(filename string, v interface{}) error {
	if filename == "" {
		return nil
	}

	md, err := toml.DecodeFile(filename, v)
	if err != nil {
		return errors.Wrapf(err, "decode %v", filename)
	}
	if keys := md.Undecoded(); len(keys) > 0 {
		return errors.Errorf("unknown keys %v in %v", keys, filename)
	}
	return nil
}
