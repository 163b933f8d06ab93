package httpapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/ashidadhich33-source/PINAK-ERP-sub005/backup"
	"github.com/gin-gonic/gin"
)

const scheduledBackupName = "scheduled"

type createBackupRequest struct {
	Name        string `json:"name"`
	IncludeLogs bool   `json:"include_logs"`
}

func (s *Server) handleBackupCreate(c *gin.Context) {
	var req createBackupRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid JSON body"})
		return
	}

	result, err := s.backups.Create(c.Request.Context(), req.Name, req.IncludeLogs)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"backup_file": result.BackupFile,
		"size_mb":     result.SizeMB,
		"timestamp":   result.Timestamp,
	})
}

type backupFileRequest struct {
	BackupFile string `json:"backup_file" binding:"required"`
}

func (s *Server) handleBackupRestore(c *gin.Context) {
	var req backupFileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "backup_file is required"})
		return
	}

	verify := s.backups.Verify(c.Request.Context(), req.BackupFile)
	if !verify.Valid {
		c.JSON(http.StatusBadRequest, gin.H{"detail": verify.Err.Error()})
		return
	}

	// Shutdown drains the runner instead of cancelling it: aborting a
	// restore mid-swap is worse than finishing it.
	restoreCtx := context.WithoutCancel(s.ctx)

	file := req.BackupFile
	started := s.runner.TryRun("restore", file, func() error {
		return s.backups.Restore(restoreCtx, file)
	})
	if !started {
		c.JSON(http.StatusConflict, gin.H{"detail": "another background task is running"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":     "restore initiated",
		"backup_file": file,
	})
}

func (s *Server) handleRestoreStatus(c *gin.Context) {
	status, ok := s.runner.Status()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"detail": "no restore has been initiated"})
		return
	}
	c.JSON(http.StatusOK, status)
}

func (s *Server) handleBackupList(c *gin.Context) {
	entries, err := s.backups.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
		return
	}
	c.JSON(http.StatusOK, entries)
}

func (s *Server) handleBackupVerify(c *gin.Context) {
	var req backupFileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "backup_file is required"})
		return
	}

	verify := s.backups.Verify(c.Request.Context(), req.BackupFile)
	if !verify.Valid {
		c.JSON(http.StatusOK, gin.H{"valid": false, "error": verify.Err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"valid":      true,
		"metadata":   verify.Manifest,
		"file_count": verify.FileCount,
	})
}

func (s *Server) handleBackupDownload(c *gin.Context) {
	filename := c.Param("filename")

	reader, size, err := s.backups.Open(filename)
	if err != nil {
		if errors.Is(err, backup.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"detail": "backup not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
		return
	}
	defer reader.Close()

	c.DataFromReader(http.StatusOK, size, "application/zip", reader, map[string]string{
		"Content-Disposition": fmt.Sprintf("attachment; filename=%q", filename),
	})
}

func (s *Server) handleBackupDelete(c *gin.Context) {
	filename := c.Param("filename")

	if err := s.backups.Delete(c.Request.Context(), filename); err != nil {
		if errors.Is(err, backup.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"detail": "backup not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": fmt.Sprintf("backup %s deleted", filename)})
}

func (s *Server) handleBackupSchedule(c *gin.Context) {
	result, err := s.backups.Create(c.Request.Context(), scheduledBackupName, false)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":     "scheduled backup created",
		"backup_file": result.BackupFile,
	})
}
