package render

import "image"

// TileGrid partitions a width×height frame into row-major square tiles of
// edge tileSize. Tiles on the last row and column are clipped to the frame.
// A non-positive tileSize yields a single tile covering the whole frame.
func TileGrid(width, height, tileSize int) []image.Rectangle {
	if width <= 0 || height <= 0 {
		return nil
	}
	if tileSize <= 0 {
		return []image.Rectangle{image.Rect(0, 0, width, height)}
	}
	tilesX := (width + tileSize - 1) / tileSize
	tilesY := (height + tileSize - 1) / tileSize
	tiles := make([]image.Rectangle, 0, tilesX*tilesY)
	for ty := 0; ty < tilesY; ty++ {
		for tx := 0; tx < tilesX; tx++ {
			x0 := tx * tileSize
			y0 := ty * tileSize
			x1 := min(x0+tileSize, width)
			y1 := min(y0+tileSize, height)
			tiles = append(tiles, image.Rect(x0, y0, x1, y1))
		}
	}
	return tiles
}
