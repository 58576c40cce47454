package main

import (
	"github.com/fogleman/fauxgl"
	"github.com/nfnt/resize"
)

const (
	// Scale down images relative to Full HD resolution.
	fhdScaler     = 0.4
	width, height = int(1920. * fhdScaler), int(1080. * fhdScaler) // output width and height in pixels
)

func stlToPNG(stlName, outputname string) error {
	mesh, err := fauxgl.LoadSTL(stlName)
	if err != nil {
		return err
	}
	const (
		scale = 2  // supersampling
		fovy  = 30 // vertical field of view in degrees
		near  = 1
		far   = 10
	)

	var (
		eye    = fauxgl.V(2.4, 2.4, 2.4)              // camera position, iso view
		center = fauxgl.V(0, 0, 0)                    // view center position
		up     = fauxgl.V(0, 0, 1)                    // up vector
		light  = fauxgl.V(-0.75, 1, 0.25).Normalize() // light direction
		color  = fauxgl.HexColor("#468966")           // object color
	)

	// fit mesh in a bi-unit cube centered at the origin
	mesh.BiUnitCube()
	context := fauxgl.NewContext(width*scale, height*scale)
	context.ClearColorBufferWith(fauxgl.HexColor("#FFF8E3"))
	aspect := float64(width) / float64(height)
	matrix := fauxgl.LookAt(eye, center, up).Perspective(fovy, aspect, near, far)
	shader := fauxgl.NewPhongShader(matrix, light, eye)
	shader.ObjectColor = color
	context.Shader = shader
	context.DrawMesh(mesh)
	// downsample image for antialiasing
	image := context.Image()
	image = resize.Resize(uint(width), uint(height), image, resize.Bilinear)
	return fauxgl.SavePNG(outputname, image)
}
