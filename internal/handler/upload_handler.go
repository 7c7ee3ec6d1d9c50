package handler

import (
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/image/draw"
)

// 超过该宽度的图片在落盘前等比缩小
const maxUploadWidth = 1600

// UploadImage 处理菜谱图片上传请求
func (a *API) UploadImage(c *gin.Context) {
	file, err := c.FormFile("image")
	if err != nil {
		respondError(c, http.StatusBadRequest, "未找到上传的图片")
		return
	}

	contentType := file.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		respondError(c, http.StatusBadRequest, "只允许上传图片文件")
		return
	}

	if err := os.MkdirAll(a.uploadDir, 0o755); err != nil {
		respondError(c, http.StatusInternalServerError, "创建上传目录失败")
		return
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	newFilename := fmt.Sprintf("%s-%s%s", time.Now().Format("20060102"), uuid.New().String(), ext)
	filePath := filepath.Join(a.uploadDir, newFilename)

	saved := false
	if ext == ".jpg" || ext == ".jpeg" || ext == ".png" {
		if err := saveResized(file, filePath, ext); err == nil {
			saved = true
		}
		// 解码失败就按原样保存，不因缩放能力拒绝上传
	}
	if !saved {
		if err := c.SaveUploadedFile(file, filePath); err != nil {
			respondError(c, http.StatusInternalServerError, "保存文件失败")
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "上传成功",
		"url":     fmt.Sprintf("%s/%s", strings.TrimRight(a.uploadURL, "/"), newFilename),
	})
}

// saveResized 解码图片，宽度超限时用双线性插值缩小后写盘。
func saveResized(file *multipart.FileHeader, path, ext string) error {
	src, err := file.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	img, _, err := image.Decode(src)
	if err != nil {
		return err
	}

	bounds := img.Bounds()
	if bounds.Dx() > maxUploadWidth {
		height := bounds.Dy() * maxUploadWidth / bounds.Dx()
		scaled := image.NewRGBA(image.Rect(0, 0, maxUploadWidth, height))
		draw.ApproxBiLinear.Scale(scaled, scaled.Bounds(), img, bounds, draw.Over, nil)
		img = scaled
	}

	out, err := os.Create(path)
	if err != nil {
		return err
	}
	defer out.Close()

	if ext == ".png" {
		return png.Encode(out, img)
	}
	return jpeg.Encode(out, img, &jpeg.Options{Quality: 85})
}
