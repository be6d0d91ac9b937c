//go:build ocr

// Package ocr recognizes text in scanned table images.
//
// This build wraps the Tesseract engine via gosseract and requires the
// Tesseract libraries at build and run time. On Ubuntu/Debian:
//
//	apt-get install tesseract-ocr libtesseract-dev
//
// For Cyrillic reports add the rus language pack and set OCR_LANGUAGE=eng+rus.
package ocr

import (
	"fmt"
	"strings"

	"github.com/otiai10/gosseract/v2"
)

// Client wraps one Tesseract instance. A Client is not safe for concurrent
// use; create one per goroutine and Close it when done.
type Client struct {
	client *gosseract.Client
}

// New creates a new OCR client.
func New() (*Client, error) {
	return &Client{client: gosseract.NewClient()}, nil
}

// Close releases OCR resources. It is safe to call on a nil client.
func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

// RecognizeImage performs OCR on image data (PNG, TIFF, JPEG).
// Returns the recognized text with leading/trailing whitespace trimmed.
func (c *Client) RecognizeImage(imageData []byte) (string, error) {
	if err := c.client.SetImageFromBytes(imageData); err != nil {
		return "", fmt.Errorf("set image: %w", err)
	}

	text, err := c.client.Text()
	if err != nil {
		return "", fmt.Errorf("recognize: %w", err)
	}

	return strings.TrimSpace(text), nil
}

// SetLanguage sets the recognition languages as a "+" separated list.
func (c *Client) SetLanguage(lang string) error {
	return c.client.SetLanguage(strings.Split(lang, "+")...)
}

// SetPageSegMode sets how Tesseract segments the page.
func (c *Client) SetPageSegMode(mode PageSegMode) error {
	if err := c.client.SetPageSegMode(gosseract.PageSegMode(mode)); err != nil {
		return err
	}
	// Keep runs of spaces so column gaps survive recognition.
	return c.client.SetVariable("preserve_interword_spaces", "1")
}
